package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage participant instances",
}

var instanceAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, _ := cmd.Flags().GetString("address")

		instance := &types.Instance{
			ID:      args[0],
			Address: address,
			Enabled: true,
		}
		if err := apiClient(cmd).RegisterInstance(instance); err != nil {
			return err
		}
		fmt.Printf("Instance %s registered\n", instance.ID)
		return nil
	},
}

var instanceLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List instances",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := apiClient(cmd).ListInstances()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tADDRESS\tENABLED\tSTATUS\tLAST HEARTBEAT")
		for _, instance := range instances {
			heartbeat := "-"
			if !instance.LastHeartbeat.IsZero() {
				heartbeat = fmt.Sprintf("%s ago", time.Since(instance.LastHeartbeat).Round(time.Second))
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
				instance.ID, instance.Address, instance.Enabled, instance.Status, heartbeat)
		}
		return w.Flush()
	},
}

var instanceRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient(cmd).RemoveInstance(args[0]); err != nil {
			return err
		}
		fmt.Printf("Instance %s removed\n", args[0])
		return nil
	},
}

var instanceHeartbeatCmd = &cobra.Command{
	Use:   "heartbeat <id>",
	Short: "Record a liveness signal for an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiClient(cmd).Heartbeat(args[0])
	},
}

func init() {
	instanceAddCmd.Flags().String("address", "", "Instance serving address (host:port)")

	instanceCmd.AddCommand(instanceAddCmd)
	instanceCmd.AddCommand(instanceLsCmd)
	instanceCmd.AddCommand(instanceRmCmd)
	instanceCmd.AddCommand(instanceHeartbeatCmd)

	rootCmd.AddCommand(instanceCmd)
}
