package services

import (
	"restaurant_ops_backend/internal/models"

	"github.com/shopspring/decimal"
)

// PartialCostMarkup is applied to the raw ingredient cost of ready units.
var PartialCostMarkup = decimal.NewFromInt(3)

var hundred = decimal.NewFromInt(100)

// CalculatePartialCost prices an order that may be settled before every unit is
// ready. Items with some but not all units ready are charged by the ingredient
// cost of their ready units; definitions or stock items that cannot be
// resolved contribute nothing. The nominal total is the order's stored total.
func CalculatePartialCost(order *models.Order, definitions map[int64]models.PreparationUnitDefinition, stock map[int64]models.StockItem) models.PartialCost {
	result := models.PartialCost{
		OrderID:      order.ID,
		NominalTotal: order.Total,
		Items:        make([]models.ItemCost, 0, len(order.Items)),
	}

	if order.FullyPrepared() {
		result.AdjustedTotal = result.NominalTotal
		for i := range order.Items {
			item := &order.Items[i]
			result.Items = append(result.Items, models.ItemCost{
				ItemID: item.ID, Name: item.Name,
				ReadyUnits: item.ReadyUnits(), TotalUnits: len(item.Units),
				Amount: item.LineTotal(),
			})
		}
		return result
	}

	adjusted := decimal.Zero
	for i := range order.Items {
		item := &order.Items[i]
		ready := item.ReadyUnits()
		cost := models.ItemCost{ItemID: item.ID, Name: item.Name, ReadyUnits: ready, TotalUnits: len(item.Units)}

		switch {
		case len(item.Units) == 0 || ready == len(item.Units):
			cost.Amount = item.LineTotal()
		case ready == 0:
			cost.Amount = decimal.Zero
		default:
			raw := decimal.Zero
			for _, unit := range item.Units {
				if unit.Status != models.UnitStatusReady {
					continue
				}
				raw = raw.Add(unitIngredientCost(unit.DefinitionID, definitions, stock))
			}
			cost.Amount = raw.Mul(PartialCostMarkup).Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		adjusted = adjusted.Add(cost.Amount)
		result.Items = append(result.Items, cost)
	}

	result.AdjustedTotal = adjusted
	result.IsPartial = adjusted.IsPositive() && adjusted.LessThan(result.NominalTotal)
	return result
}

// unitIngredientCost is Σ quantity / (1 − wastage/100) × unitPrice over the
// definition's ingredients.
func unitIngredientCost(definitionID int64, definitions map[int64]models.PreparationUnitDefinition, stock map[int64]models.StockItem) decimal.Decimal {
	def, ok := definitions[definitionID]
	if !ok {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, ing := range def.Ingredients {
		item, ok := stock[ing.StockItemID]
		if !ok {
			continue
		}
		yield := decimal.NewFromInt(1).Sub(ing.WastagePercent.Div(hundred))
		if !yield.IsPositive() {
			continue
		}
		total = total.Add(ing.Quantity.Div(yield).Mul(item.UnitPrice))
	}
	return total
}
