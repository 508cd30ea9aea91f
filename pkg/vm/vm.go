package vm

import (
	"io"

	"github.com/sirupsen/logrus"

	"asvm/pkg/config"
)

// VM is the context every lookup, coercion and call runs in. It carries the
// language version explicitly instead of reading it from global state.
// A VM and the objects it manipulates must be used by one goroutine at a time.
type VM struct {
	version  int
	maxDepth int

	log             logrus.FieldLogger
	verboseASCoding bool

	realm *Realm
	roots *Registry
}

// NewVM creates a VM context from cfg and bootstraps its realm.
func NewVM(cfg config.Config) *VM {
	if cfg.MaxPrototypeDepth < 1 {
		cfg.MaxPrototypeDepth = config.Default().MaxPrototypeDepth
	}
	vm := &VM{
		version:         cfg.SWFVersion,
		maxDepth:        cfg.MaxPrototypeDepth,
		verboseASCoding: cfg.VerboseASCodingErrors,
		log:             newLogger(cfg.LogLevel),
	}
	vm.roots = NewRegistry()
	vm.realm = newRealm(vm)
	return vm
}

func newLogger(level string) logrus.FieldLogger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Version returns the SWF version the VM emulates.
func (vm *VM) Version() int { return vm.version }

// WithVersion returns a copy of the context that emulates another SWF
// version. Realm and registry are shared, so objects can be inspected under
// both sets of rules.
func (vm *VM) WithVersion(version int) *VM {
	c := *vm
	c.version = version
	return &c
}

// MaxPrototypeDepth is the hop cap for prototype chain walks.
func (vm *VM) MaxPrototypeDepth() int { return vm.maxDepth }

// Logger returns the logger used for engine diagnostics.
func (vm *VM) Logger() logrus.FieldLogger { return vm.log }

// SetLogger replaces the diagnostics logger. A nil logger discards output.
func (vm *VM) SetLogger(l logrus.FieldLogger) {
	if l == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l = discard
	}
	vm.log = l
}

// Registry returns the root-object registry used to resolve soft references.
func (vm *VM) Registry() *Registry { return vm.roots }

// Realm returns the bootstrapped prototypes and global object.
func (vm *VM) Realm() *Realm { return vm.realm }

// NewObject creates an ordinary object inheriting from Object.prototype.
func (vm *VM) NewObject() *Object {
	return NewObject(vm, vm.realm.ObjectPrototype)
}

// asCodingError reports a script mistake on a member that the engine
// tolerates.
func (vm *VM) asCodingError(uri ObjectURI, format string, args ...any) {
	vm.codingError(logrus.Fields{"property": uri.String()}, format, args...)
}

func (vm *VM) codingError(fields logrus.Fields, format string, args ...any) {
	if !vm.verboseASCoding {
		return
	}
	vm.log.WithFields(fields).WithField("swf_version", vm.version).Warnf(format, args...)
}

// caseless reports whether member names compare case-insensitively.
func (vm *VM) caseless() bool { return vm.version < 7 }
