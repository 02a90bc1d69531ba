package services

import (
	"bytes"
	"context"
	"strconv"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// ShoppingListFilename is the attachment name of a downloaded list
const ShoppingListFilename = "shopping_list.txt"

// ShoppingItem is one aggregated line of a shopping list
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// AggregateCartLines sums amounts per ingredient name. Items keep the order
// in which each name first appears, and the unit of the last line with
// that name wins.
func AggregateCartLines(lines []models.CartLine) []ShoppingItem {
	index := make(map[string]int, len(lines))
	items := make([]ShoppingItem, 0, len(lines))
	for _, line := range lines {
		i, ok := index[line.Name]
		if !ok {
			index[line.Name] = len(items)
			items = append(items, ShoppingItem{Name: line.Name, MeasurementUnit: line.MeasurementUnit, Total: line.Amount})
			continue
		}
		items[i].Total += line.Amount
		items[i].MeasurementUnit = line.MeasurementUnit
	}
	return items
}

// RenderShoppingList writes one "<name> (<unit>) - <total>" line per item
func RenderShoppingList(items []ShoppingItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		buf.WriteString(item.Name)
		buf.WriteString(" (")
		buf.WriteString(item.MeasurementUnit)
		buf.WriteString(") - ")
		buf.WriteString(strconv.Itoa(item.Total))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ShoppingListService builds the downloadable list for a user's cart
type ShoppingListService struct {
	carts repositories.CartRepository
}

func NewShoppingListService(carts repositories.CartRepository) *ShoppingListService {
	return &ShoppingListService{carts: carts}
}

// BuildShoppingList returns the rendered list. An empty cart yields an
// empty body.
func (s *ShoppingListService) BuildShoppingList(ctx context.Context, userID uint) ([]byte, error) {
	lines, err := s.carts.GetCartLines(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load cart")
		return nil, ErrInternalServer
	}
	items := AggregateCartLines(lines)
	logrus.WithFields(logrus.Fields{"user_id": userID, "items": len(items)}).Debug("Shopping list built")
	return RenderShoppingList(items), nil
}
