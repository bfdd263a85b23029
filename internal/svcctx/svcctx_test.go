package svcctx

import (
	"context"
	"testing"

	"github.com/Julien-ser/ResumeWorthy/internal/config"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
)

func TestExtractorsWithoutServices(t *testing.T) {
	ctx := context.Background()
	if StoreFrom(ctx) != nil {
		t.Error("StoreFrom() should be nil without services")
	}
	if IngesterFrom(ctx) != nil {
		t.Error("IngesterFrom() should be nil without services")
	}
	if LoggerFrom(ctx) == nil {
		t.Error("LoggerFrom() should fall back to the default logger")
	}
	if got := ConfigFrom(ctx).Defaults.OwnerID; got != config.DefaultOwnerID {
		t.Errorf("ConfigFrom().Defaults.OwnerID = %q, want default", got)
	}
}

func TestWithServices(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := WithServices(context.Background(), &Services{Store: st, StoreDriver: store.DriverMemory})

	if StoreFrom(ctx) != st {
		t.Error("StoreFrom() did not return the attached store")
	}
	if ServicesFrom(ctx).StoreDriver != store.DriverMemory {
		t.Error("ServicesFrom() lost StoreDriver")
	}
	if DefraManagerFrom(ctx) != nil {
		t.Error("DefraManagerFrom() should be nil when unset")
	}
}
