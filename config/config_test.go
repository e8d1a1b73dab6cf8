// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package config

import "testing"

func TestDefaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxEntitiesPerNode != 10 {
		t.Errorf("default MaxEntitiesPerNode = %d, want 10", c.MaxEntitiesPerNode)
	}
	if c.MaxDepth != 21 {
		t.Errorf("default MaxDepth = %d, want 21", c.MaxDepth)
	}
	if c.SpanningPolicy != SpanningNone {
		t.Errorf("default SpanningPolicy = %v, want SpanningNone", c.SpanningPolicy)
	}
	if c.IDGenerator == nil {
		t.Error("default IDGenerator must not be nil")
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	c, err := New(
		WithMaxEntitiesPerNode(2),
		WithMaxDepth(5),
		WithSpanningPolicy(SpanningBoundsRequired),
		WithBulkRegionCount(16),
	)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxEntitiesPerNode != 2 || c.MaxDepth != 5 || c.SpanningPolicy != SpanningBoundsRequired || c.BulkRegionCount != 16 {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestValidationRejectsBadInputs(t *testing.T) {
	cases := []Option{
		WithMaxEntitiesPerNode(0),
		WithMaxDepth(22),
		WithBulkRegionCount(0),
		WithNodePool(100, 10, 2.0), // initial > max
	}
	for _, opt := range cases {
		if _, err := New(opt); err == nil {
			t.Errorf("expected validation error for option %v", opt)
		}
	}
}
