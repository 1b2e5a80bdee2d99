package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"taskledger/internal/cache"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/model"
	"taskledger/internal/repository"
)

// ShopItem is a catalog entry bought with ledger currency.
type ShopItem struct {
	ID          string             `json:"item_id"`
	Name        string             `json:"item_name"`
	Price       int64              `json:"price"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	Icon        string             `json:"icon"`
	Effect      map[string]float64 `json:"effect"`
}

var shopCatalog = []ShopItem{
	{ID: "item_energy_small", Name: "Small Energy Potion", Price: 50, Category: "consumable", Description: "Restores 10 attribute points", Icon: "🧪", Effect: map[string]float64{"attr_restore": 10}},
	{ID: "item_energy_medium", Name: "Medium Energy Potion", Price: 150, Category: "consumable", Description: "Restores 30 attribute points", Icon: "🧪", Effect: map[string]float64{"attr_restore": 30}},
	{ID: "item_energy_large", Name: "Large Energy Potion", Price: 300, Category: "consumable", Description: "Restores 50 attribute points", Icon: "🧪", Effect: map[string]float64{"attr_restore": 50}},
	{ID: "item_task_accelerator", Name: "Task Accelerator", Price: 200, Category: "tool", Description: "Cuts task time by 20%", Icon: "⚡", Effect: map[string]float64{"task_time_reduction": 0.2}},
	{ID: "item_coin_detector", Name: "Coin Detector", Price: 350, Category: "tool", Description: "Raises task coin rewards by 15%", Icon: "💰", Effect: map[string]float64{"coin_bonus": 0.15}},
	{ID: "item_experience_boost", Name: "Experience Booster", Price: 250, Category: "tool", Description: "Raises experience gains by 20%", Icon: "🚀", Effect: map[string]float64{"exp_bonus": 0.2}},
}

// ResourceKey is the inventory key a purchased item is stored under.
func (i ShopItem) ResourceKey() string {
	return "shop_" + i.ID
}

// PurchaseResult is a completed order and the balance left after it.
type PurchaseResult struct {
	Purchase         *model.Purchase `json:"purchase"`
	RemainingBalance int64           `json:"remaining_balance"`
}

// ShopService sells catalog items for ledger currency.
type ShopService interface {
	Items(category string) []ShopItem
	Purchase(ctx context.Context, userID uuid.UUID, itemID string, qty int64) (*PurchaseResult, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]model.Purchase, error)
}

type shopService struct {
	repos *repository.Repositories
	cache *cache.Client
}

// NewShopService creates a new shop service.
func NewShopService(repos *repository.Repositories, cache *cache.Client) ShopService {
	return &shopService{repos: repos, cache: cache}
}

// Items lists the catalog, optionally filtered by category.
func (s *shopService) Items(category string) []ShopItem {
	items := make([]ShopItem, 0, len(shopCatalog))
	for _, item := range shopCatalog {
		if category == "" || item.Category == category {
			items = append(items, item)
		}
	}
	return items
}

func findShopItem(id string) (ShopItem, bool) {
	for _, item := range shopCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return ShopItem{}, false
}

// Purchase debits the price, grants the item as a resource and records the
// order in a single transaction.
func (s *shopService) Purchase(ctx context.Context, userID uuid.UUID, itemID string, qty int64) (*PurchaseResult, error) {
	item, ok := findShopItem(itemID)
	if !ok {
		return nil, apperrors.ErrItemNotFound
	}
	if qty <= 0 || qty > math.MaxInt64/item.Price {
		return nil, apperrors.ErrInvalidAmount
	}
	total := item.Price * qty

	result := &PurchaseResult{}
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := debit(ctx, tx, userID, total, "shop:"+item.ID); err != nil {
			return err
		}
		if err := tx.Resources.Grant(ctx, userID, item.ResourceKey(), qty); err != nil {
			return fmt.Errorf("grant purchased item: %w", err)
		}
		purchase := &model.Purchase{
			UserID:     userID,
			ItemID:     item.ID,
			ItemName:   item.Name,
			Quantity:   qty,
			UnitPrice:  item.Price,
			TotalPrice: total,
		}
		if err := tx.Purchases.Create(ctx, purchase); err != nil {
			return fmt.Errorf("record purchase: %w", err)
		}
		balance, err := tx.Ledger.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}
		result.Purchase = purchase
		result.RemainingBalance = balance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(ctx, userID)
	log.WithFields(log.Fields{"user_id": userID, "item_id": item.ID, "quantity": qty, "total": total}).Info("shop purchase")
	return result, nil
}

func (s *shopService) History(ctx context.Context, userID uuid.UUID, limit int) ([]model.Purchase, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repos.Purchases.ListByUser(ctx, userID, limit)
}
