package server

import (
	"sync"

	"github.com/df-mc/chunkmesh/server/world"
	"github.com/df-mc/chunkmesh/server/world/mesh"
)

// MeshCache is a MeshSink keeping the latest mesh of every chunk. Meshes
// identical to the one already cached are counted but otherwise ignored, so
// that a renderer polling the cache only uploads meshes that changed.
// MeshCache is safe for concurrent use.
type MeshCache struct {
	mu        sync.RWMutex
	meshes    map[world.ChunkPos]cachedMesh
	unchanged uint64
}

type cachedMesh struct {
	buf     *mesh.Buffer
	quality mesh.Quality
	digest  uint64
	version uint64
}

// NewMeshCache returns an empty MeshCache.
func NewMeshCache() *MeshCache {
	return &MeshCache{meshes: make(map[world.ChunkPos]cachedMesh)}
}

// HandleMesh stores buf as the mesh of the chunk at pos.
func (c *MeshCache) HandleMesh(pos world.ChunkPos, q mesh.Quality, buf *mesh.Buffer) {
	digest := buf.Digest()

	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.meshes[pos]
	if ok && prev.digest == digest && prev.quality == q {
		c.unchanged++
		return
	}
	c.meshes[pos] = cachedMesh{buf: buf, quality: q, digest: digest, version: prev.version + 1}
}

// Mesh returns the latest mesh of the chunk at pos and the amount of times it
// changed.
func (c *MeshCache) Mesh(pos world.ChunkPos) (*mesh.Buffer, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meshes[pos]
	return m.buf, m.version, ok
}

// Forget removes the mesh of the chunk at pos. It implements MeshForgetter,
// so a Server calls it once the chunk is unloaded.
func (c *MeshCache) Forget(pos world.ChunkPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.meshes, pos)
}

// Len returns the amount of chunks with a cached mesh.
func (c *MeshCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meshes)
}

// Unchanged returns the amount of meshes received that were identical to the
// mesh already cached.
func (c *MeshCache) Unchanged() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unchanged
}

// Totals returns the sum of the quads and vertices of all cached meshes.
func (c *MeshCache) Totals() (quads, vertices int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.meshes {
		quads += m.buf.QuadCount()
		vertices += m.buf.VertexCount()
	}
	return quads, vertices
}
