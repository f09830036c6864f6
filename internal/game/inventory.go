package game

import (
	"context"
	"fmt"
	"time"

	"github.com/neonsprawl/engine/internal/store"
	"github.com/neonsprawl/engine/pkg/entity"
)

// Inventory mutations operate on a loaded character; the caller holds
// that character's lock and persists the record afterwards. Stack IDs
// come from the shared monotonic counter.

// AddItem adds a stack of the catalog item to the character's
// inventory. Stackable items (consumables, currency) without custom
// data merge into an existing stack.
func AddItem(ctx context.Context, s store.Store, c *entity.Character, itemCode string, quantity int, customData map[string]any) error {
	def, ok := entity.ItemDefinition(itemCode)
	if !ok {
		return fmt.Errorf("%w: unknown item %q", ErrInvalidInput, itemCode)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	if def.Stackable() && customData == nil {
		for i := range c.Inventory {
			if c.Inventory[i].ItemCode == itemCode && c.Inventory[i].CustomData == nil {
				c.Inventory[i].Quantity += quantity
				return nil
			}
		}
	}

	id, err := s.NextID(ctx, "inventory_items")
	if err != nil {
		return fmt.Errorf("failed to assign inventory item id: %w", err)
	}

	c.Inventory = append(c.Inventory, entity.InventoryItem{
		ID:         formatID(id),
		ItemCode:   itemCode,
		Quantity:   quantity,
		CustomData: customData,
		AcquiredAt: time.Now(),
	})
	return nil
}

// RemoveItem removes quantity from the named stack, dropping the stack
// entirely when it runs out.
func RemoveItem(c *entity.Character, inventoryItemID string, quantity int) error {
	for i := range c.Inventory {
		if c.Inventory[i].ID != inventoryItemID {
			continue
		}
		if c.Inventory[i].Quantity <= quantity {
			// Unequip if the departing item was equipped.
			for slot, equipped := range c.Equipment {
				if equipped == inventoryItemID {
					delete(c.Equipment, slot)
				}
			}
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
		} else {
			c.Inventory[i].Quantity -= quantity
		}
		return nil
	}
	return fmt.Errorf("%w: inventory item %q", ErrNotFound, inventoryItemID)
}

// EquipItem places the inventory item into its catalog slot,
// displacing whatever held the slot. Items without a slot cannot be
// equipped.
func EquipItem(c *entity.Character, inventoryItemID string) error {
	var item *entity.InventoryItem
	for i := range c.Inventory {
		if c.Inventory[i].ID == inventoryItemID {
			item = &c.Inventory[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("%w: inventory item %q", ErrNotFound, inventoryItemID)
	}

	def, ok := entity.ItemDefinition(item.ItemCode)
	if !ok {
		return fmt.Errorf("%w: unknown item %q", ErrInvalidInput, item.ItemCode)
	}
	if def.Slot == "" {
		return fmt.Errorf("%w: %q is not equippable", ErrPreconditionFailed, item.ItemCode)
	}

	c.Equipment[def.Slot] = inventoryItemID
	return nil
}

// UnequipSlot clears an equipment slot; clearing an empty slot is a no-op.
func UnequipSlot(c *entity.Character, slot string) {
	delete(c.Equipment, slot)
}

// ExpandedItem joins an inventory stack with its catalog definition.
type ExpandedItem struct {
	entity.InventoryItem
	Definition entity.ItemDef `json:"definition"`
}

// ExpandedInventory returns the character's inventory with catalog
// definitions attached; stacks referencing unknown codes are dropped.
func ExpandedInventory(c *entity.Character) []ExpandedItem {
	out := make([]ExpandedItem, 0, len(c.Inventory))
	for _, item := range c.Inventory {
		def, ok := entity.ItemDefinition(item.ItemCode)
		if !ok {
			continue
		}
		out = append(out, ExpandedItem{InventoryItem: item, Definition: def})
	}
	return out
}
