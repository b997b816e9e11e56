package cmd

import (
	"log/slog"
	"time"

	"github.com/brokerops/dealflow/pkg/executors/assignbroker"
	"github.com/brokerops/dealflow/pkg/executors/createtask"
	"github.com/brokerops/dealflow/pkg/executors/sendnotification"
	"github.com/brokerops/dealflow/pkg/executors/updatefield"
	"github.com/brokerops/dealflow/pkg/protocol"
	"github.com/brokerops/dealflow/pkg/registry"
)

// Capabilities are the external collaborators injected into the executors.
type Capabilities struct {
	Tasks     protocol.TaskCreator
	Notifier  protocol.Notifier
	Deals     protocol.DealFieldWriter
	Brokers   protocol.BrokerAssigner
	Directory protocol.DealDirectory
}

// NewRegistry builds the executor registry with one executor per action kind,
// each bounded by callTimeout.
func NewRegistry(logger *slog.Logger, caps Capabilities, callTimeout time.Duration) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.Register(createtask.NewExecutor(caps.Tasks, createtask.WithTimeout(callTimeout)))
	reg.Register(sendnotification.NewExecutor(caps.Notifier, caps.Directory, sendnotification.WithTimeout(callTimeout)))
	reg.Register(updatefield.NewExecutor(caps.Deals, updatefield.WithTimeout(callTimeout)))
	reg.Register(assignbroker.NewExecutor(caps.Brokers, caps.Directory, assignbroker.WithTimeout(callTimeout)))

	return reg
}
