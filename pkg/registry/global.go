package registry

import (
	"github.com/arthur-debert/datadeps/pkg/errors"
	"github.com/arthur-debert/datadeps/pkg/types"
)

// The process-wide dependency registry. Library users normally register
// their dependencies here from init() and resolve against it.
var dependencyRegistry Registry[*types.Dependency]

func init() {
	dependencyRegistry = New[*types.Dependency]()
}

// Dependencies returns the process-wide dependency registry
func Dependencies() Registry[*types.Dependency] {
	return dependencyRegistry
}

// RegisterDependency validates a descriptor and adds it to the
// process-wide registry. Invalid descriptors are rejected here so that
// resolution never sees one.
func RegisterDependency(dep *types.Dependency) error {
	if dep == nil {
		return errors.New(errors.ErrInvalidInput, "dependency cannot be nil")
	}
	if err := dep.Validate(); err != nil {
		return err
	}
	return dependencyRegistry.Register(dep.Name, dep)
}

// MustRegisterDependency registers a descriptor and panics on failure.
// Useful in init() functions where a bad descriptor is a programming error.
func MustRegisterDependency(dep *types.Dependency) {
	if err := dep.Validate(); err != nil {
		panic(err)
	}
	MustRegister(dependencyRegistry, dep.Name, dep)
}

// LookupDependency retrieves a descriptor by name, mapping a registry
// miss to ErrUnknownDependency.
func LookupDependency(reg Registry[*types.Dependency], name string) (*types.Dependency, error) {
	dep, err := reg.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUnknownDependency,
			"no registered data dependency named %q", name)
	}
	return dep, nil
}
