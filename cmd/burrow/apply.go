package main

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a configuration file",
	Long: `Apply a Burrow configuration from a YAML file.

Examples:
  # Register a resource
  burrow apply -f resource.yaml

  # Register a custom state model
  burrow apply -f statemodel.yaml`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

// BurrowManifest represents a generic Burrow configuration document
type BurrowManifest struct {
	Kind string    `yaml:"kind"`
	Spec yaml.Node `yaml:"spec"`
}

// ResourceSpec is the YAML shape of a Resource manifest
type ResourceSpec struct {
	Name                     string `yaml:"name"`
	StateModel               string `yaml:"stateModel"`
	Partitions               int    `yaml:"partitions"`
	Replicas                 string `yaml:"replicas"`
	MaxPartitionsPerInstance int    `yaml:"maxPartitionsPerInstance"`
}

// StateModelSpec is the YAML shape of a StateModel manifest
type StateModelSpec struct {
	Name         string `yaml:"name"`
	InitialState string `yaml:"initialState"`
	States       []struct {
		Name  string `yaml:"name"`
		Count string `yaml:"count"`
	} `yaml:"states"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	var manifest BurrowManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse YAML: %v", err)
	}

	c := apiClient(cmd)

	switch manifest.Kind {
	case "Resource":
		var spec ResourceSpec
		if err := manifest.Spec.Decode(&spec); err != nil {
			return fmt.Errorf("invalid resource spec: %v", err)
		}
		resource := &types.Resource{
			Name:                     spec.Name,
			StateModel:               spec.StateModel,
			NumPartitions:            spec.Partitions,
			Replicas:                 spec.Replicas,
			MaxPartitionsPerInstance: spec.MaxPartitionsPerInstance,
		}
		if err := c.CreateResource(resource); err != nil {
			return err
		}
		fmt.Printf("Resource %s applied\n", spec.Name)

	case "StateModel":
		var spec StateModelSpec
		if err := manifest.Spec.Decode(&spec); err != nil {
			return fmt.Errorf("invalid state model spec: %v", err)
		}
		def := &types.StateModelDefinition{
			Name:         spec.Name,
			InitialState: spec.InitialState,
		}
		for _, s := range spec.States {
			def.States = append(def.States, types.StateSpec{Name: s.Name, CountSpec: s.Count})
		}
		if err := c.CreateStateModel(def); err != nil {
			return err
		}
		fmt.Printf("State model %s applied\n", spec.Name)

	default:
		return fmt.Errorf("unknown kind: %q", manifest.Kind)
	}

	return nil
}
