package adapter

import (
	"fmt"
	"sync"

	"ai-content-gateway/internal/domain/entity"
)

// Registry 把 (vendor, capability) 映射到 Adapter 实现，
// 以接口分发取代对 vendor 的条件分支。
type Registry struct {
	mu     sync.RWMutex
	text   map[entity.Vendor]TextGenerator
	binary map[binaryKey]BinaryGenerator
}

type binaryKey struct {
	vendor     entity.Vendor
	capability entity.Capability
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		text:   make(map[entity.Vendor]TextGenerator),
		binary: make(map[binaryKey]BinaryGenerator),
	}
}

// RegisterText 注册文本模态实现
func (r *Registry) RegisterText(vendor entity.Vendor, gen TextGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text[vendor] = gen
}

// RegisterBinary 注册二进制模态实现
func (r *Registry) RegisterBinary(vendor entity.Vendor, cap entity.Capability, gen BinaryGenerator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binary[binaryKey{vendor: vendor, capability: cap}] = gen
}

// Text 解析文本模态实现
func (r *Registry) Text(vendor entity.Vendor) (TextGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.text[vendor]
	if !ok {
		return nil, fmt.Errorf("no text adapter registered for vendor %s", vendor)
	}
	return gen, nil
}

// Binary 解析二进制模态实现
func (r *Registry) Binary(vendor entity.Vendor, cap entity.Capability) (BinaryGenerator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.binary[binaryKey{vendor: vendor, capability: cap}]
	if !ok {
		return nil, fmt.Errorf("no %s adapter registered for vendor %s", cap, vendor)
	}
	return gen, nil
}
