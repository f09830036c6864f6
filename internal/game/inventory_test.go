package game

import (
	"context"
	"errors"
	"testing"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

func TestAddItem_StacksConsumables(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "medkit", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := AddItem(ctx, ms, c, "medkit", 2, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(c.Inventory) != 1 {
		t.Fatalf("Expected 1 merged stack, got %d", len(c.Inventory))
	}
	if c.Inventory[0].Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", c.Inventory[0].Quantity)
	}
}

func TestAddItem_CustomDataNeverStacks(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "credits_chip", 1, map[string]any{"amount": 25}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := AddItem(ctx, ms, c, "credits_chip", 1, map[string]any{"amount": 40}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(c.Inventory) != 2 {
		t.Errorf("Stacks with custom data must stay separate, got %d", len(c.Inventory))
	}
}

func TestAddItem_EquipmentNeverStacks(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "pistol", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := AddItem(ctx, ms, c, "pistol", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(c.Inventory) != 2 {
		t.Errorf("Weapons must not stack, got %d stacks", len(c.Inventory))
	}
}

func TestAddItem_UnknownCode(t *testing.T) {
	ms := store.NewMemStore()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	err := AddItem(context.Background(), ms, c, "vorpal_sword", 1, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "medkit", 3, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	id := c.Inventory[0].ID

	if err := RemoveItem(c, id, 1); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if c.Inventory[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", c.Inventory[0].Quantity)
	}

	if err := RemoveItem(c, id, 5); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(c.Inventory) != 0 {
		t.Errorf("Expected stack removed, got %d stacks", len(c.Inventory))
	}

	if err := RemoveItem(c, id, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEquipItem_SlotExclusivity(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "pistol", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := AddItem(ctx, ms, c, "stun_baton", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	pistolID := c.Inventory[0].ID
	batonID := c.Inventory[1].ID

	if err := EquipItem(c, pistolID); err != nil {
		t.Fatalf("EquipItem failed: %v", err)
	}
	if c.Equipment["weapon"] != pistolID {
		t.Errorf("Expected pistol in weapon slot, got %q", c.Equipment["weapon"])
	}

	// Equipping the baton displaces the pistol: one item per slot.
	if err := EquipItem(c, batonID); err != nil {
		t.Fatalf("EquipItem failed: %v", err)
	}
	if c.Equipment["weapon"] != batonID {
		t.Errorf("Expected baton in weapon slot, got %q", c.Equipment["weapon"])
	}

	UnequipSlot(c, "weapon")
	if _, ok := c.Equipment["weapon"]; ok {
		t.Error("Expected weapon slot cleared")
	}
}

func TestEquipItem_NotEquippable(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "medkit", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	err := EquipItem(c, c.Inventory[0].ID)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("Expected ErrPreconditionFailed, got %v", err)
	}
}

func TestRemoveItem_UnequipsDepartingItem(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "light_armor", 1, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	id := c.Inventory[0].ID
	if err := EquipItem(c, id); err != nil {
		t.Fatalf("EquipItem failed: %v", err)
	}

	if err := RemoveItem(c, id, 1); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok := c.Equipment["body"]; ok {
		t.Error("Expected body slot cleared when the item left the inventory")
	}
}

func TestExpandedInventory(t *testing.T) {
	ms := store.NewMemStore()
	ctx := context.Background()
	c := entity.NewCharacter(1, "user", "Tester", 100, 100, 10, 500, 6, 6)

	if err := AddItem(ctx, ms, c, "stim_pack", 2, nil); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	expanded := ExpandedInventory(c)
	if len(expanded) != 1 {
		t.Fatalf("Expected 1 expanded item, got %d", len(expanded))
	}
	if expanded[0].Definition.Name != "Stim Pack" {
		t.Errorf("Expected definition attached, got %+v", expanded[0].Definition)
	}
}
