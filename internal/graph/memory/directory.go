package memory

import (
	"context"
	"sync"

	"github.com/kailas-cloud/reachout/internal/domain/network"
)

// Directory is an in-memory company directory keyed by normalized company name.
type Directory struct {
	mu        sync.RWMutex
	companies map[string]network.Company
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{companies: make(map[string]network.Company)}
}

// Put inserts or replaces a company. An empty Key is derived from Name.
func (d *Directory) Put(c network.Company) {
	key := network.CompanyKey(c.Key)
	if key == "" {
		key = network.CompanyKey(c.Name)
	}
	c.Key = key

	d.mu.Lock()
	defer d.mu.Unlock()
	d.companies[key] = c
}

// GetCompany returns a copy of the company, or nil when unknown.
func (d *Directory) GetCompany(_ context.Context, companyKey string) (*network.Company, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.companies[network.CompanyKey(companyKey)]
	if !ok {
		return nil, nil
	}
	c.Employees = append([]network.Employee(nil), c.Employees...)
	return &c, nil
}
