package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service [install|uninstall|start|stop|run]",
		Short: "Manage crmd as a system service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			prg := &program{cfgPath: cfgPath}
			svcArgs := []string{"service", "run"}
			if cfgPath != "" {
				svcArgs = append(svcArgs, "--config", cfgPath)
			}

			svc, err := service.New(prg, &service.Config{
				Name:        "crmd",
				DisplayName: "CRM Daemon",
				Description: "Self-hosted CRM daemon with GraphQL API and scheduled jobs",
				Arguments:   svcArgs,
			})
			if err != nil {
				return err
			}

			switch args[0] {
			case "run":
				return svc.Run()
			case "install", "uninstall", "start", "stop":
				if err := service.Control(svc, args[0]); err != nil {
					return err
				}
				fmt.Printf("Service %s: done\n", args[0])
				return nil
			default:
				return fmt.Errorf("unknown service action: %s", args[0])
			}
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

// program adapts the daemon to the service.Interface lifecycle.
type program struct {
	cfgPath string
	stop    chan struct{}
	done    chan error
}

// Start implements service.Interface. It must not block.
func (p *program) Start(service.Service) error {
	d, err := newDaemon(p.cfgPath)
	if err != nil {
		return err
	}

	p.stop = make(chan struct{})
	p.done = make(chan error, 1)
	go func() {
		p.done <- d.run(p.stop)
	}()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(service.Service) error {
	close(p.stop)
	return <-p.done
}
