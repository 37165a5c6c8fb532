package compiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vk/execgraph/internal/ast"
	"github.com/vk/execgraph/internal/ctxlog"
)

// Fingerprint identifies a function body together with the registry version
// it is compiled against.
func Fingerprint(fn *ast.Function, version uint64) string {
	h := sha256.New()
	h.Write([]byte(ast.Format(fn)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatUint(version, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache memoizes compilation by fingerprint. Concurrent requests for the
// same function share one compilation. Failed compilations are not cached.
type Cache struct {
	compiler  *Compiler
	artifacts sync.Map
	group     singleflight.Group
}

// NewCache wraps c.
func NewCache(c *Compiler) *Cache {
	return &Cache{compiler: c}
}

// Compile returns the cached artifact for fn, compiling it on first use.
func (c *Cache) Compile(ctx context.Context, fn *ast.Function) (*Artifact, error) {
	key := Fingerprint(fn, c.compiler.reg.Version())
	if art, ok := c.artifacts.Load(key); ok {
		ctxlog.FromContext(ctx).Debug("Compilation cache hit.", "function", fn.Name)
		return art.(*Artifact), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if art, ok := c.artifacts.Load(key); ok {
			return art, nil
		}
		art, err := c.compiler.Compile(ctx, fn)
		if err != nil {
			return nil, err
		}
		c.artifacts.Store(key, art)
		return art, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Artifact), nil
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	n := 0
	c.artifacts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
