// Package anvil runs a forked Anvil node in a Docker container.
package anvil

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/chainsafe/strategy-harness/pkg/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const rpcPort = "8545/tcp"

// Node is a running Anvil container
type Node struct {
	container testcontainers.Container
	url       string
	logger    *zap.Logger
}

// Args returns the anvil command line for cfg
func Args(cfg config.ContainerConfig) []string {
	args := []string{
		"--host", "0.0.0.0",
		"--port", "8545",
		"--fork-url", cfg.ForkURL,
		"--chain-id", strconv.FormatUint(cfg.ChainID, 10),
	}
	if cfg.ForkBlock > 0 {
		args = append(args, "--fork-block-number", strconv.FormatUint(cfg.ForkBlock, 10))
	}
	return args
}

// Start launches the container and waits until the RPC port is serving
func Start(ctx context.Context, cfg config.ContainerConfig, logger *zap.Logger) (*Node, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ForkURL == "" {
		return nil, errors.New("fork url is required")
	}

	logger.Info("Starting anvil container",
		zap.String("image", cfg.Image),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Uint64("fork_block", cfg.ForkBlock))

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			Entrypoint:   []string{"anvil"},
			Cmd:          Args(cfg),
			ExposedPorts: []string{rpcPort},
			WaitingFor: wait.ForLog("Listening on").
				WithStartupTimeout(cfg.StartupTimeout),
		},
		Started: true,
	})
	if err != nil {
		if container != nil {
			_ = testcontainers.TerminateContainer(container)
		}
		return nil, fmt.Errorf("failed to start anvil container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, rpcPort)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	n := &Node{
		container: container,
		url:       fmt.Sprintf("http://%s:%s", host, port.Port()),
		logger:    logger,
	}
	logger.Info("Anvil container ready", zap.String("rpc_url", n.url))
	return n, nil
}

// URL returns the host-reachable JSON-RPC endpoint
func (n *Node) URL() string {
	return n.url
}

// Terminate stops and removes the container
func (n *Node) Terminate() error {
	if err := testcontainers.TerminateContainer(n.container); err != nil {
		return fmt.Errorf("failed to terminate anvil container: %w", err)
	}
	n.logger.Info("Anvil container terminated")
	return nil
}
