// Package discovery registers the service with Consul.
package discovery

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// Registration describes one service instance.
type Registration struct {
	ID   string
	Name string
	Host string
	Port string
	// HealthPath is polled over HTTP by the Consul agent.
	HealthPath string
}

// ConsulClient registers and deregisters service instances.
type ConsulClient struct {
	client *api.Client
}

// NewConsulClient creates a client for the agent at address.
func NewConsulClient(address string) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulClient{client: client}, nil
}

// RegisterService registers the instance with an HTTP health check.
func (c *ConsulClient) RegisterService(reg Registration) error {
	registration, err := agentRegistration(reg)
	if err != nil {
		return err
	}
	if err := c.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register %s with consul: %w", reg.ID, err)
	}
	return nil
}

// DeregisterService removes the instance.
func (c *ConsulClient) DeregisterService(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister %s from consul: %w", serviceID, err)
	}
	return nil
}

func agentRegistration(reg Registration) (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(reg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", reg.Port, err)
	}
	healthPath := reg.HealthPath
	if healthPath == "" {
		healthPath = "/healthz"
	}

	return &api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Host,
		Port:    port,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d%s", reg.Host, port, healthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}, nil
}
