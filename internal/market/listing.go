package market

import (
	"context"
	"strings"

	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
)

// Listings is the read side: projections over the ledger's product and
// order collections. Never mutates state, never caches across calls.
type Listings struct {
	Ledger Ledger
}

// Product reads one product; always current ledger truth, never cached.
func (l *Listings) Product(ctx context.Context, id uint64) (ledger.Product, error) {
	return l.Ledger.GetProduct(ctx, id)
}

// AllProductsExcept lists everyone else's products, unpaginated.
func (l *Listings) AllProductsExcept(ctx context.Context, excludeSeller string) ([]ledger.Product, error) {
	all, err := l.Ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]ledger.Product, 0, len(all))
	for _, p := range all {
		if !strings.EqualFold(p.Seller, excludeSeller) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ProductsForSale lists everyone else's products, paginated.
func (l *Listings) ProductsForSale(ctx context.Context, excludeSeller string, page, size int) (Page[ledger.Product], error) {
	filtered, err := l.AllProductsExcept(ctx, excludeSeller)
	if err != nil {
		return Page[ledger.Product]{}, err
	}
	return paginate(filtered, page, size), nil
}

// OrdersForBuyer joins the buyer's orders with their products.
func (l *Listings) OrdersForBuyer(ctx context.Context, buyer string) ([]OrderView, error) {
	all, err := l.Ledger.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []OrderView
	for _, o := range all {
		if !strings.EqualFold(o.Buyer, buyer) {
			continue
		}
		p, err := l.Ledger.GetProduct(ctx, o.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, joinView(o, p))
	}
	return out, nil
}

func (l *Listings) OrdersForBuyerPage(ctx context.Context, buyer string, page, size int) (Page[OrderView], error) {
	views, err := l.OrdersForBuyer(ctx, buyer)
	if err != nil {
		return Page[OrderView]{}, err
	}
	return paginate(views, page, size), nil
}

// OrdersForSeller shows the seller's side: live orders on their products,
// plus one placeholder row per listed product that has no order yet, so
// unsold inventory shows up alongside active orders. Canceled orders are
// skipped, which also reopens the placeholder slot for the product until a
// new live order exists.
func (l *Listings) OrdersForSeller(ctx context.Context, seller string) ([]OrderView, error) {
	allOrders, err := l.Ledger.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	var out []OrderView
	seen := map[uint64]bool{} // product ids already covered by a live order
	for _, o := range allOrders {
		if o.Canceled {
			continue
		}
		p, err := l.Ledger.GetProduct(ctx, o.ProductID)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(p.Seller, seller) {
			continue
		}
		out = append(out, joinView(o, p))
		seen[p.ID] = true
	}

	allProducts, err := l.Ledger.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range allProducts {
		if !strings.EqualFold(p.Seller, seller) || seen[p.ID] {
			continue
		}
		out = append(out, placeholderView(p))
	}
	return out, nil
}

func (l *Listings) OrdersForSellerPage(ctx context.Context, seller string, page, size int) (Page[OrderView], error) {
	views, err := l.OrdersForSeller(ctx, seller)
	if err != nil {
		return Page[OrderView]{}, err
	}
	return paginate(views, page, size), nil
}

func joinView(o ledger.Order, p ledger.Product) OrderView {
	return OrderView{
		ID: o.ID,
		Product: ProductSummary{
			ID: p.ID, Name: p.Name, Photo: p.Photo, Description: p.Description, Price: p.Price,
		},
		Total:           o.Amount,
		ProductReserved: p.Reserved,
		Sent:            o.Sent,
		Released:        o.Released,
		Paid:            o.Paid,
		Canceled:        o.Canceled,
		ProductDeleted:  p.Deleted,
		ShippingInfo:    o.ShippingInfo,
		Buyer:           o.Buyer,
	}
}

// placeholderView: a product with no order yet. Order flags all false, id
// reuses the product id, shipping/buyer carry the "none" sentinels.
func placeholderView(p ledger.Product) OrderView {
	return OrderView{
		ID: p.ID,
		Product: ProductSummary{
			ID: p.ID, Name: p.Name, Photo: p.Photo, Description: p.Description, Price: p.Price,
		},
		Total:          p.Price,
		ProductDeleted: p.Deleted,
		ShippingInfo:   NoShippingInfo,
		Buyer:          NoBuyer,
	}
}

// paginate: 1-based pages, empty page past the end, total always reported.
func paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	total := len(items)
	start := (page - 1) * size
	if start >= total {
		return Page[T]{Items: []T{}, Page: page, Size: size, Total: total}
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page[T]{Items: items[start:end], Page: page, Size: size, Total: total}
}
