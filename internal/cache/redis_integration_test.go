// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/partwise/internal/testinfra"
)

func TestRedisIntegration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewRedisContainer(ctx)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container.Container)

	r, err := DialRedis(ctx, RedisConfig{Addr: container.Addr})
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	defer r.Close()

	if err := r.Set(ctx, "reco:user:u1:personalized:v0c0p0", []byte("payload"), time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := r.Get(ctx, "reco:user:u1:personalized:v0c0p0")
	if err != nil || !ok || string(got) != "payload" {
		t.Fatalf("Get() = %s, %v, %v", got, ok, err)
	}

	time.Sleep(1500 * time.Millisecond)
	if _, ok, err := r.Get(ctx, "reco:user:u1:personalized:v0c0p0"); ok || err != nil {
		t.Errorf("Get() after ttl = %v, %v; want miss", ok, err)
	}

	if _, ok, err := r.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}
}

func TestDialRedisRequiresAddr(t *testing.T) {
	if _, err := DialRedis(context.Background(), RedisConfig{}); err == nil {
		t.Error("expected error for empty address")
	}
}
