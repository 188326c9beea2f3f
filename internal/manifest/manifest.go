package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/patchbay/internal/ctxlog"
	"github.com/vk/patchbay/internal/fsutil"
)

// Service describes one service declaration from a manifest. Entries amend
// the host's built-in catalog by name: overriding the export key, the
// backing resource path or the params of a definition, or disabling it.
// An empty Key or Resource means "keep the built-in value"; Params is nil
// when the attribute was absent and non-nil (possibly empty) when present.
type Service struct {
	Name     string
	Key      string
	Resource string
	Params   map[string]any
	Disabled bool
}

// fileRoot decodes the top-level blocks of one manifest file.
type fileRoot struct {
	Services []*serviceBlock `hcl:"service,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

// serviceBlock is the raw gohcl shape of one service declaration. Params
// stays an expression so a present-but-empty attribute can be told apart
// from an absent one.
type serviceBlock struct {
	Name     string         `hcl:"name,label"`
	Key      string         `hcl:"key,optional"`
	Resource string         `hcl:"resource,optional"`
	Disabled bool           `hcl:"disabled,optional"`
	Params   hcl.Expression `hcl:"params,optional"`
}

// Load reads every manifest file reachable from paths, in order. A path may
// name an .hcl file or a directory searched recursively; paths that do not
// exist are skipped. A service redeclared in a later file replaces the
// earlier declaration in place.
func Load(ctx context.Context, paths ...string) ([]Service, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))

	var files []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		found, err := fsutil.FindByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			files = append(files, f)
		}
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	parser := hclparse.NewParser()
	var services []Service
	index := make(map[string]int)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest file %s: %w", file, diags)
		}

		for _, block := range root.Services {
			svc, err := translateService(block)
			if err != nil {
				return nil, fmt.Errorf("in manifest file %s: %w", file, err)
			}
			if at, dup := index[svc.Name]; dup {
				logger.Debug("Service redeclared, later block wins.", "service", svc.Name)
				services[at] = svc
				continue
			}
			index[svc.Name] = len(services)
			services = append(services, svc)
		}
	}

	logger.Debug("Manifest loading complete.", "services", len(services))
	return services, nil
}

// translateService turns a decoded block into the manifest model.
func translateService(block *serviceBlock) (Service, error) {
	if block.Name == "" {
		return Service{}, errors.New("service block needs a non-empty name label")
	}
	svc := Service{
		Name:     block.Name,
		Key:      block.Key,
		Resource: block.Resource,
		Disabled: block.Disabled,
	}
	if isExprDefined(block.Params) {
		params, err := decodeParams(block.Params)
		if err != nil {
			return Service{}, fmt.Errorf("in service '%s': %w", block.Name, err)
		}
		svc.Params = params
	}
	return svc, nil
}
