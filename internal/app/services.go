package app

import (
	"context"

	"github.com/vk/patchbay/boot"
	"github.com/vk/patchbay/internal/ctxlog"
	"github.com/vk/patchbay/internal/manifest"
	"github.com/vk/patchbay/services/clock"
	"github.com/vk/patchbay/services/greeter"
	"github.com/vk/patchbay/services/sysinfo"
)

// builtinDefs is the definitive list of services compiled into the host,
// in boot order.
func builtinDefs() []boot.Def {
	return []boot.Def{
		sysinfo.Def(),
		clock.Def(),
		greeter.Def(),
	}
}

// buildCatalog applies manifest declarations onto the defs and registers
// the survivors. A declaration must name a compiled def: services cannot be
// conjured from configuration alone, so unknown names are warned about and
// dropped, the way definition/handler parity is enforced elsewhere.
func buildCatalog(ctx context.Context, defs []boot.Def, services []manifest.Service) *boot.Catalog {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		byName[def.Name] = i
	}
	disabled := make(map[string]bool)

	for _, svc := range services {
		i, ok := byName[svc.Name]
		if !ok {
			logger.Warn("Manifest declares a service with no compiled def, skipping.", "service", svc.Name)
			continue
		}
		if svc.Disabled {
			logger.Info("Service disabled by manifest.", "service", svc.Name)
			disabled[svc.Name] = true
			continue
		}
		if svc.Key != "" {
			defs[i].Key = svc.Key
		}
		if svc.Resource != "" {
			defs[i].Resource = svc.Resource
		}
		if svc.Params != nil {
			defs[i].Params = svc.Params
		}
		logger.Debug("Service def amended by manifest.", "service", svc.Name)
	}

	catalog := boot.NewCatalog()
	for _, def := range defs {
		if disabled[def.Name] {
			continue
		}
		catalog.Register(def)
	}
	return catalog
}
