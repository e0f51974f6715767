package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/burrow/pkg/api"
	"github.com/cuemby/burrow/pkg/client"
	"github.com/cuemby/burrow/pkg/controller"
	"github.com/cuemby/burrow/pkg/events"
	"github.com/cuemby/burrow/pkg/health"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/manager"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - Partition placement controller for replicated resources",
	Long: `Burrow computes deterministic assignments of partition replicas onto
live cluster instances and keeps them balanced as instances join,
fail, and recover.

A single binary runs the controller, the admin API, and the CLI.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("controller", "localhost:7070", "Controller admin API address")

	// Initialize logging before command execution
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(controllerCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func apiClient(cmd *cobra.Command) *client.Client {
	addr, _ := rootCmd.PersistentFlags().GetString("controller")
	return client.NewClient(addr)
}

// Controller commands
var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Run and manage Burrow controllers",
}

var controllerInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize and run the first controller",
	Long: `Initialize a new Burrow controller cluster with this node as the first
member, then run the rebalance loop. Additional controllers join with
'burrow controller join' followed by 'burrow controller add' on the leader.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runController(cmd, true)
	},
}

var controllerJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Run a controller that joins an existing cluster",
	Long: `Start a controller that waits to be added to an existing cluster.
On the current leader, run:

  burrow controller add <node-id> <bind-addr>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runController(cmd, false)
	},
}

var controllerAddCmd = &cobra.Command{
	Use:   "add <node-id> <address>",
	Short: "Add a controller node to the Raft cluster",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient(cmd).AddController(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Controller %s added\n", args[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{controllerInitCmd, controllerJoinCmd} {
		c.Flags().String("node-id", "", "Unique controller node id (defaults to hostname)")
		c.Flags().String("bind-addr", "127.0.0.1:7100", "Raft bind address")
		c.Flags().String("api-addr", "127.0.0.1:7070", "Admin API bind address")
		c.Flags().String("data-dir", "/var/lib/burrow", "Data directory")
		c.Flags().Duration("interval", controller.DefaultInterval, "Reconciliation interval")
		c.Flags().Duration("heartbeat-ttl", manager.DefaultHeartbeatTTL, "Instance heartbeat TTL")
		c.Flags().Bool("probe-instances", false, "Probe instance addresses over TCP as a secondary liveness signal")
	}
	controllerCmd.AddCommand(controllerInitCmd)
	controllerCmd.AddCommand(controllerJoinCmd)
	controllerCmd.AddCommand(controllerAddCmd)
}

func runController(cmd *cobra.Command, bootstrap bool) error {
	nodeID, _ := cmd.Flags().GetString("node-id")
	bindAddr, _ := cmd.Flags().GetString("bind-addr")
	apiAddr, _ := cmd.Flags().GetString("api-addr")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	interval, _ := cmd.Flags().GetDuration("interval")
	heartbeatTTL, _ := cmd.Flags().GetDuration("heartbeat-ttl")
	probe, _ := cmd.Flags().GetBool("probe-instances")

	if nodeID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("failed to derive node id: %w", err)
		}
		nodeID = hostname
	}

	mgr, err := manager.NewManager(&manager.Config{
		NodeID:       nodeID,
		BindAddr:     bindAddr,
		DataDir:      dataDir,
		HeartbeatTTL: heartbeatTTL,
	})
	if err != nil {
		return err
	}
	defer mgr.Shutdown()

	if bootstrap {
		if err := mgr.Bootstrap(); err != nil {
			return err
		}
		if err := mgr.EnsureDefaultStateModels(); err != nil {
			return fmt.Errorf("failed to register default state models: %w", err)
		}
	} else {
		if err := mgr.Join(); err != nil {
			return err
		}
	}

	ctrl := controller.NewController(mgr)
	ctrl.SetInterval(interval)
	ctrl.Start()
	defer ctrl.Stop()

	collector := manager.NewMetricsCollector(mgr)
	collector.Start()
	defer collector.Stop()

	if probe {
		monitor := startInstanceMonitor(mgr)
		defer monitor.Stop()
	}

	server := api.NewServer(mgr)
	go func() {
		if err := server.Start(apiAddr); err != nil {
			log.Errorf("Admin API server exited", err)
		}
	}()
	defer server.Close()

	log.Logger.Info().
		Str("node_id", nodeID).
		Str("bind_addr", bindAddr).
		Str("api_addr", apiAddr).
		Msg("Controller running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down")
	return nil
}

// startInstanceMonitor probes instance addresses over TCP and marks
// instances down when their serving port stops answering
func startInstanceMonitor(mgr *manager.Manager) *health.Monitor {
	monitor := health.NewMonitor(health.DefaultConfig(), func(id string, healthy bool, result health.Result) {
		if healthy {
			return
		}
		instance, err := mgr.GetInstance(id)
		if err != nil {
			return
		}
		instance.Status = types.InstanceStatusDown
		if err := mgr.UpdateInstance(instance); err != nil {
			log.Errorf("Failed to mark probed instance down", err)
			return
		}
		mgr.PublishEvent(events.EventInstanceDown, "Instance failed health probe", map[string]string{
			"instance_id": id,
			"probe":       result.Message,
		})
	})
	monitor.Start()

	// Keep the probed target set in sync with registered instances
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			instances, err := mgr.ListInstances()
			if err != nil {
				continue
			}
			var targets []health.Target
			for _, instance := range instances {
				if instance.Address == "" {
					continue
				}
				targets = append(targets, health.Target{
					ID:      instance.ID,
					Checker: health.NewTCPChecker(instance.Address),
				})
			}
			monitor.SetTargets(targets)
		}
	}()

	return monitor
}
