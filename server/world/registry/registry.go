// Package registry maps voxel ids and texture names to the metadata meshers
// need. Registries are assembled through a Loader and are immutable once
// built, so a single *Registries may be shared freely between goroutines.
package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/brentp/intintmap"
	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/chunkmesh/server/block/model"
)

// VoxelID identifies a type of voxel.
type VoxelID uint32

// Air is the id of the empty voxel. It is always registered and always
// transparent.
const Air VoxelID = 0

// Transparency describes whether a voxel hides the faces of voxels next to
// it.
type Transparency uint8

const (
	Opaque Transparency = iota
	Transparent
)

// String returns "opaque" or "transparent".
func (t Transparency) String() string {
	if t == Transparent {
		return "transparent"
	}
	return "opaque"
}

// VoxelType is the registered metadata of a voxel id.
type VoxelType struct {
	ID           VoxelID
	Name         string
	Transparency Transparency
}

var (
	// ErrDuplicateVoxel is returned when a voxel name is registered twice.
	ErrDuplicateVoxel = errors.New("registry: duplicate voxel name")
	// ErrTextureCollision is returned when two texture names hash to the
	// same key.
	ErrTextureCollision = errors.New("registry: texture name hash collision")
)

// Loader collects voxel types and textures before they are frozen into a
// Registries value. A Loader is not safe for concurrent use.
type Loader struct {
	voxels   []VoxelType
	names    map[string]VoxelID
	textures []string
	hashes   *intintmap.Map
}

// NewLoader returns a Loader with Air already registered.
func NewLoader() *Loader {
	l := &Loader{
		names:  make(map[string]VoxelID),
		hashes: intintmap.New(64, 0.6),
	}
	l.voxels = append(l.voxels, VoxelType{ID: Air, Name: "air", Transparency: Transparent})
	l.names["air"] = Air
	return l
}

// RegisterVoxel registers a new voxel type and returns its id. Ids are
// handed out sequentially.
func (l *Loader) RegisterVoxel(name string, t Transparency) (VoxelID, error) {
	if _, ok := l.names[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateVoxel, name)
	}
	id := VoxelID(len(l.voxels))
	l.voxels = append(l.voxels, VoxelType{ID: id, Name: name, Transparency: t})
	l.names[name] = id
	return id, nil
}

// RegisterTexture registers a texture by name and returns its index.
// Registering the same name twice returns the index of the first
// registration.
func (l *Loader) RegisterTexture(name string) (model.TextureIndex, error) {
	key := textureKey(name)
	if idx, ok := l.hashes.Get(key); ok {
		if l.textures[idx] != name {
			return 0, fmt.Errorf("%w: %q and %q", ErrTextureCollision, l.textures[idx], name)
		}
		return model.TextureIndex(idx), nil
	}
	idx := len(l.textures)
	l.textures = append(l.textures, name)
	l.hashes.Put(key, int64(idx))
	return model.TextureIndex(idx), nil
}

// Build freezes the registered voxel types and textures. The Loader may keep
// being used afterwards without affecting the returned Registries.
func (l *Loader) Build() *Registries {
	r := &Registries{
		voxels:   slices.Clone(l.voxels),
		names:    make(map[string]VoxelID, len(l.names)),
		textures: slices.Clone(l.textures),
		hashes:   intintmap.New(max(len(l.textures), 1), 0.6),
	}
	for name, id := range l.names {
		r.names[name] = id
	}
	for i, name := range r.textures {
		r.hashes.Put(textureKey(name), int64(i))
	}
	return r
}

// Registries is an immutable view of registered voxel types and textures.
type Registries struct {
	voxels   []VoxelType
	names    map[string]VoxelID
	textures []string
	hashes   *intintmap.Map
}

// Voxel returns the type registered for id.
func (r *Registries) Voxel(id VoxelID) (VoxelType, bool) {
	if int(id) >= len(r.voxels) {
		return VoxelType{}, false
	}
	return r.voxels[id], true
}

// Transparency returns the transparency of id. Unknown ids are transparent,
// so that faces next to them are never hidden.
func (r *Registries) Transparency(id VoxelID) Transparency {
	if t, ok := r.Voxel(id); ok {
		return t.Transparency
	}
	return Transparent
}

// VoxelByName looks up the id of a voxel type by its name.
func (r *Registries) VoxelByName(name string) (VoxelID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// VoxelCount returns the amount of registered voxel types, Air included.
func (r *Registries) VoxelCount() int {
	return len(r.voxels)
}

// TextureIndex looks up the index of a texture by its name.
func (r *Registries) TextureIndex(name string) (model.TextureIndex, bool) {
	idx, ok := r.hashes.Get(textureKey(name))
	if !ok || r.textures[idx] != name {
		return 0, false
	}
	return model.TextureIndex(idx), true
}

// TextureName returns the name of the texture at idx.
func (r *Registries) TextureName(idx model.TextureIndex) (string, bool) {
	if int(idx) >= len(r.textures) {
		return "", false
	}
	return r.textures[idx], true
}

// TextureCount returns the amount of registered textures.
func (r *Registries) TextureCount() int {
	return len(r.textures)
}

func textureKey(name string) int64 {
	return int64(xxhash.Sum64String(name))
}
