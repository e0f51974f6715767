package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Manage partitioned resources",
}

var resourceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		partitions, _ := cmd.Flags().GetInt("partitions")
		stateModel, _ := cmd.Flags().GetString("state-model")
		replicas, _ := cmd.Flags().GetString("replicas")
		maxPerInstance, _ := cmd.Flags().GetInt("max-per-instance")

		resource := &types.Resource{
			Name:                     args[0],
			StateModel:               stateModel,
			NumPartitions:            partitions,
			Replicas:                 replicas,
			MaxPartitionsPerInstance: maxPerInstance,
		}
		if err := apiClient(cmd).CreateResource(resource); err != nil {
			return err
		}
		fmt.Printf("Resource %s created (%d partitions, %s replicas, %s)\n",
			resource.Name, resource.NumPartitions, resource.Replicas, resource.StateModel)
		return nil
	},
}

var resourceLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List resources",
	RunE: func(cmd *cobra.Command, args []string) error {
		resources, err := apiClient(cmd).ListResources()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPARTITIONS\tREPLICAS\tSTATE MODEL\tMAX/INSTANCE")
		for _, r := range resources {
			max := "-"
			if r.MaxPartitionsPerInstance > 0 {
				max = fmt.Sprintf("%d", r.MaxPartitionsPerInstance)
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
				r.Name, r.NumPartitions, r.Replicas, r.StateModel, max)
		}
		return w.Flush()
	},
}

var resourceRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient(cmd).DeleteResource(args[0]); err != nil {
			return err
		}
		fmt.Printf("Resource %s removed\n", args[0])
		return nil
	},
}

var idealStateCmd = &cobra.Command{
	Use:   "ideal-state <resource>",
	Short: "Show a resource's current ideal state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		is, err := apiClient(cmd).GetIdealState(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Resource: %s\nMode: %s\nState model: %s\nReplicas: %s\n",
			is.Resource, is.Mode, is.StateModel, is.Replicas)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PARTITION\tINSTANCES")
		for i := 0; i < is.NumPartitions; i++ {
			partition := (&types.Resource{Name: is.Resource, NumPartitions: is.NumPartitions}).PartitionName(i)
			instances := is.ListFields[partition]
			fmt.Fprintf(w, "%s\t%v\n", partition, instances)
		}
		return w.Flush()
	},
}

func init() {
	resourceAddCmd.Flags().Int("partitions", 1, "Number of partitions")
	resourceAddCmd.Flags().String("state-model", "MasterSlave", "State model name")
	resourceAddCmd.Flags().String("replicas", "1", "Replicas per partition (number or N)")
	resourceAddCmd.Flags().Int("max-per-instance", 0, "Max partitions per instance (0 = unlimited)")

	resourceCmd.AddCommand(resourceAddCmd)
	resourceCmd.AddCommand(resourceLsCmd)
	resourceCmd.AddCommand(resourceRmCmd)

	rootCmd.AddCommand(resourceCmd)
	rootCmd.AddCommand(idealStateCmd)
}
