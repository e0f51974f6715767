package main

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/rebalance"
	"github.com/cuemby/burrow/pkg/statemodel"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Placement tooling",
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Compute an assignment offline from a snapshot file",
	Long: `Run the placement algorithm against a YAML snapshot without touching a
running cluster. Useful for previewing how an assignment reacts to
instance loss or addition.

Snapshot format:

  resource: db
  partitions: [db_0, db_1, db_2]
  states:
    - {name: MASTER, count: "1"}
    - {name: SLAVE, count: "2"}
  maxPartitionsPerInstance: 0
  allInstances: [n0, n1, n2]
  liveInstances: [n0, n1]
  currentMapping:
    db_0:
      n0: MASTER
      n1: SLAVE`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringP("file", "f", "", "Snapshot YAML file (required)")
	_ = simulateCmd.MarkFlagRequired("file")

	rebalanceCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(rebalanceCmd)
}

// SimulationSnapshot is the YAML shape consumed by 'rebalance simulate'
type SimulationSnapshot struct {
	Resource   string   `yaml:"resource"`
	Partitions []string `yaml:"partitions"`
	States     []struct {
		Name  string `yaml:"name"`
		Count string `yaml:"count"`
	} `yaml:"states"`
	MaxPartitionsPerInstance int                          `yaml:"maxPartitionsPerInstance"`
	AllInstances             []string                     `yaml:"allInstances"`
	LiveInstances            []string                     `yaml:"liveInstances"`
	CurrentMapping           map[string]map[string]string `yaml:"currentMapping"`
}

func runSimulate(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	var snapshot SimulationSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse YAML: %v", err)
	}

	counts := statemodel.NewStateCount()
	for _, s := range snapshot.States {
		n := 0
		if _, err := fmt.Sscanf(s.Count, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("state %s: count must be a positive number in simulations", s.Name)
		}
		counts.Set(s.Name, n)
	}

	assignment := rebalance.Compute(rebalance.Spec{
		Resource:                 snapshot.Resource,
		Partitions:               snapshot.Partitions,
		StateCounts:              counts,
		MaxPartitionsPerInstance: snapshot.MaxPartitionsPerInstance,
	}, snapshot.AllInstances, snapshot.LiveInstances, snapshot.CurrentMapping)

	out, err := yaml.Marshal(map[string]interface{}{
		"resource":   assignment.Resource,
		"listFields": assignment.ListFields,
		"mapFields":  assignment.MapFields,
	})
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
