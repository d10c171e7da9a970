// transfer
package actor

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// kinds of transfer resource
const (
	// TransferBuffer names an in-memory byte buffer.
	TransferBuffer = iota
	// TransferFile names a file-like stream.
	TransferFile
)

// TransferRef names a large binary resource registered in the address
// space identified by Address. The key is an opaque byte string into
// that address's transfer registry - a resource name, not an actor
// identifier: a TransferRef carries no behavior, only the identity
// used by the fetch/stream/release protocol. Moving payloads this way
// keeps them off the general message-serialization path.
type TransferRef struct {
	Address Address `json:"address"`
	Key     []byte  `json:"key"`
	Kind    int     `json:"kind"`
}

// storageRegistry is one address-local registry of transfer
// resources. Registries exist per kind and are guarded independently
// of the actor lock map; no state is shared across addresses.
//
// Resources are create-once and multi-fetch: a registered resource
// can be fetched any number of times until it is explicitly released.
// Nothing is reclaimed automatically - a registration with no
// matching release lives until the environment closes.
type storageRegistry struct {
	sync.Mutex
	kind      string
	resources map[string]interface{}
	closed    bool
}

func newStorageRegistry(kind string) *storageRegistry {
	return &storageRegistry{kind: kind, resources: make(map[string]interface{})}
}

func (r *storageRegistry) register(key []byte, resource interface{}) error {
	r.Lock()
	defer r.Unlock()
	if r.closed {
		return errors.Wrapf(ErrEnvClosed, "register %v %q", r.kind, key)
	}
	if _, ok := r.resources[string(key)]; ok {
		return errors.Wrapf(ErrResourceExists, "register %v %q", r.kind, key)
	}
	r.resources[string(key)] = resource
	return nil
}

func (r *storageRegistry) fetch(key []byte) (interface{}, error) {
	r.Lock()
	defer r.Unlock()
	resource, ok := r.resources[string(key)]
	if !ok {
		return nil, errors.Wrapf(ErrResourceNotFound, "fetch %v %q", r.kind, key)
	}
	return resource, nil
}

func (r *storageRegistry) release(key []byte) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.resources[string(key)]; !ok {
		return errors.Wrapf(ErrResourceNotFound, "release %v %q", r.kind, key)
	}
	delete(r.resources, string(key))
	return nil
}

// clear drops everything and refuses registrations from then on.
// Called once, at environment close.
func (r *storageRegistry) clear() {
	r.Lock()
	r.resources = make(map[string]interface{})
	r.closed = true
	r.Unlock()
}

// RegisterBuffer registers buf under key in this address's buffer
// registry. The key must not already be taken.
func (env *Environment) RegisterBuffer(key []byte, buf []byte) (TransferRef, error) {
	if err := env.buffers.register(key, buf); err != nil {
		return TransferRef{}, err
	}
	env.bus.Publish(ResourceLifecycle, "buffer "+string(key)+" registered")
	return TransferRef{Address: env.address, Key: key, Kind: TransferBuffer}, nil
}

// FetchBuffer returns the buffer named by ref.
func (env *Environment) FetchBuffer(ref TransferRef) ([]byte, error) {
	resource, err := env.buffers.fetch(ref.Key)
	if err != nil {
		return nil, err
	}
	return resource.([]byte), nil
}

// RegisterFile registers a file-like stream under key in this
// address's file registry.
func (env *Environment) RegisterFile(key []byte, f io.ReadSeeker) (TransferRef, error) {
	if err := env.files.register(key, f); err != nil {
		return TransferRef{}, err
	}
	env.bus.Publish(ResourceLifecycle, "file "+string(key)+" registered")
	return TransferRef{Address: env.address, Key: key, Kind: TransferFile}, nil
}

// FetchFile returns the stream named by ref.
func (env *Environment) FetchFile(ref TransferRef) (io.ReadSeeker, error) {
	resource, err := env.files.fetch(ref.Key)
	if err != nil {
		return nil, err
	}
	return resource.(io.ReadSeeker), nil
}

// ReleaseResource removes the resource named by ref. Fetches after
// release fail with ErrResourceNotFound, as does a second release.
func (env *Environment) ReleaseResource(ref TransferRef) error {
	var err error
	switch ref.Kind {
	case TransferBuffer:
		err = env.buffers.release(ref.Key)
	case TransferFile:
		err = env.files.release(ref.Key)
	default:
		return errors.Wrapf(ErrResourceNotFound, "release kind %v", ref.Kind)
	}
	if err != nil {
		return err
	}
	env.bus.Publish(ResourceLifecycle, string(ref.Key)+" released")
	return nil
}
