package nodes

import (
	"log/slog"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

const (
	TypeStart       = "start"
	TypeEcho        = "echo"
	TypeNoop        = "noop"
	TypeEnd         = "end"
	TypeSet         = "set"
	TypeCondition   = "condition"
	TypeSwitch      = "switch"
	TypeMerge       = "merge"
	TypeDelay       = "delay"
	TypeHTTPRequest = "httpRequest"
	TypeFail        = "fail"
)

// Builtins returns one handler per built-in node type.
func Builtins(httpConfig domain.HTTPConfig, logger *slog.Logger) []ports.NodePort {
	if logger == nil {
		logger = slog.Default()
	}

	return []ports.NodePort{
		newPassthrough(TypeStart),
		newPassthrough(TypeEcho),
		newPassthrough(TypeNoop),
		newPassthrough(TypeEnd),
		newSetNode(),
		newConditionNode(),
		newSwitchNode(),
		newMergeNode(),
		newDelayNode(),
		NewHTTPRequestNode(httpConfig, logger),
		newFailNode(),
	}
}

func RegisterBuiltins(registry ports.NodeRegistryPort, httpConfig domain.HTTPConfig, logger *slog.Logger) error {
	for _, node := range Builtins(httpConfig, logger) {
		if err := registry.RegisterNode(node); err != nil {
			return err
		}
	}
	return nil
}
