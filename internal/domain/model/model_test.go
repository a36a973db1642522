package model

import "testing"

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"idle", OrderStatusIdle, "IDLE"},
		{"on basket", OrderStatusOnBasket, "ON_BASKET"},
		{"finished", OrderStatusFinished, "FINISHED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestProductKindValid(t *testing.T) {
	if !KindCatalogItem.Valid() || !KindSuggestedItem.Valid() {
		t.Fatal("expected known kinds to be valid")
	}
	if ProductKind("GADGET").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
}

func TestLoadStatusFlags(t *testing.T) {
	var status LoadStatus
	if status.AllLoaded() {
		t.Fatal("empty status must not report all loaded")
	}
	if status.Loaded(KindCatalogItem) || status.Loaded(KindSuggestedItem) {
		t.Fatal("empty status must not report any kind loaded")
	}

	status.CatalogLoaded = true
	if !status.Loaded(KindCatalogItem) {
		t.Fatal("expected catalog kind loaded")
	}
	if status.Loaded(KindSuggestedItem) || status.AllLoaded() {
		t.Fatal("suggested kind must stay unloaded")
	}

	status.SuggestedLoaded = true
	if !status.AllLoaded() {
		t.Fatal("expected all loaded once both flags are set")
	}
	if status.Loaded(ProductKind("GADGET")) {
		t.Fatal("unknown kind must never report loaded")
	}
}
