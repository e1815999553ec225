package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-market-escrow.git/internal/ledger"
	"github.com/ariefcatur/go-market-escrow.git/internal/market"
	"github.com/ariefcatur/go-market-escrow.git/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultPage = 1
	defaultSize = 9
)

// MarketHandler maps HTTP requests onto the lifecycle engine, the listing
// layer, and the price converter. Validation here is limited to parsing
// primitives; the engine and the ledger own the real preconditions.
type MarketHandler struct {
	Engine    *market.Engine
	Listings  *market.Listings
	Converter *pricing.Converter
	Escrow    string // escrow contract address buyers pay into
}

func (h *MarketHandler) Register(r *chi.Mux) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/all", h.allProducts)
		r.Get("/allForSale", h.productsForSale)
		r.Post("/addForSale", h.addForSale)
		r.Get("/getEscrowAddress", h.escrowAddress)
		r.Get("/myOrders", h.myOrders)
		r.Get("/myOrdersPerPage", h.myOrdersPerPage)
		r.Get("/myProducts", h.myProducts)
		r.Get("/myProductsPerPage", h.myProductsPerPage)
		r.Post("/confirmSend/{orderId}", h.confirmSend)
		r.Post("/confirmReceived/{orderId}", h.confirmReceived)
		r.Post("/cancelReservation/{orderId}", h.cancelReservation)
		r.Get("/convertEuroToEth", h.convertFiatToCrypto)
		r.Get("/convertEthToEuro", h.convertCryptoToFiat)
		r.Get("/convertWeiToEuro", h.convertWeiToFiat)
		r.Get("/convertEthToWei", h.convertCryptoToWei)
		r.Get("/convertWeiToEth", h.convertWeiToCrypto)
		r.Get("/{id}", h.productDetail)
		r.Delete("/{id}", h.deleteProduct)
		r.Post("/{id}/reserve", h.reserveProduct)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Engine error kinds map onto caller-visible statuses. ErrUnreachable gets
// 504 so clients know the outcome is unknown, not that the operation failed.
func statusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, market.ErrPaymentVerification):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrUnreachable):
		return http.StatusGatewayTimeout
	case errors.Is(err, pricing.ErrOracleUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 25*time.Second)
}

func pageParams(r *http.Request) (page, size int) {
	page, size = defaultPage, defaultSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}

// ---- products ----

func (h *MarketHandler) productDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	p, err := h.Listings.Product(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *MarketHandler) allProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	ps, err := h.Listings.AllProductsExcept(ctx, r.URL.Query().Get("buyerAddress"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *MarketHandler) productsForSale(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	ctx, cancel := reqCtx(r)
	defer cancel()

	pg, err := h.Listings.ProductsForSale(ctx, r.URL.Query().Get("buyerAddress"), page, size)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (h *MarketHandler) addForSale(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	photo := r.FormValue("photo")
	description := r.FormValue("description")
	price := r.FormValue("price")
	seller := r.FormValue("sellerAddress")
	if name == "" || price == "" || seller == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	fiat, err := decimal.NewFromString(price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	wei, err := h.Converter.FiatToWei(ctx, fiat)
	if err != nil {
		writeErr(w, err)
		return
	}
	rc, err := h.Engine.CreateProduct(ctx, name, photo, description, wei, seller)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product created", "tx_hash": rc.TxHash})
}

func (h *MarketHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	seller := r.FormValue("sellerAddress")
	if seller == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing sellerAddress"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	rc, err := h.Engine.DeleteProduct(ctx, id, seller)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted", "tx_hash": rc.TxHash})
}

func (h *MarketHandler) reserveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	buyer := r.FormValue("buyerAddress")
	shippingName := r.FormValue("shippingName")
	shippingAddress := r.FormValue("shippingAddress")
	paymentTx := r.FormValue("transactionHash")
	expected := r.FormValue("expectedValuePrice")
	if buyer == "" || paymentTx == "" || expected == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	amount, ok := new(big.Int).SetString(expected, 10)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expectedValuePrice"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	rc, err := h.Engine.ReserveProduct(ctx, id, amount, buyer, shippingName, shippingAddress, paymentTx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product reserved", "tx_hash": rc.TxHash})
}

func (h *MarketHandler) escrowAddress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"address": h.Escrow})
}

// ---- orders ----

func (h *MarketHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	views, err := h.Listings.OrdersForBuyer(ctx, r.URL.Query().Get("buyerAddress"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *MarketHandler) myOrdersPerPage(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	ctx, cancel := reqCtx(r)
	defer cancel()

	pg, err := h.Listings.OrdersForBuyerPage(ctx, r.URL.Query().Get("buyerAddress"), page, size)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (h *MarketHandler) myProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()

	views, err := h.Listings.OrdersForSeller(ctx, r.URL.Query().Get("sellerAddress"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *MarketHandler) myProductsPerPage(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	ctx, cancel := reqCtx(r)
	defer cancel()

	pg, err := h.Listings.OrdersForSellerPage(ctx, r.URL.Query().Get("sellerAddress"), page, size)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (h *MarketHandler) confirmSend(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	seller := r.FormValue("sellerAddress")
	if seller == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing sellerAddress"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	rc, err := h.Engine.ConfirmSend(ctx, orderID, seller)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order marked sent", "tx_hash": rc.TxHash})
}

func (h *MarketHandler) confirmReceived(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	buyer := r.FormValue("buyerAddress")
	if buyer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing buyerAddress"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	rc, err := h.Engine.ConfirmReceived(ctx, orderID, buyer)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "funds released", "tx_hash": rc.TxHash})
}

func (h *MarketHandler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	buyer := r.FormValue("buyerAddress")
	if buyer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing buyerAddress"})
		return
	}

	ctx, cancel := reqCtx(r)
	defer cancel()

	rc, err := h.Engine.CancelReservation(ctx, orderID, buyer)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reservation canceled", "tx_hash": rc.TxHash})
}

// ---- conversions ----

func (h *MarketHandler) convertFiatToCrypto(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("euroAmount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid euroAmount"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Converter.FiatToCrypto(ctx, amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": out.String()})
}

func (h *MarketHandler) convertCryptoToFiat(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("ethAmount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ethAmount"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Converter.CryptoToFiat(ctx, amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": out.String()})
}

func (h *MarketHandler) convertWeiToFiat(w http.ResponseWriter, r *http.Request) {
	wei, ok := new(big.Int).SetString(r.URL.Query().Get("weiAmount"), 10)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weiAmount"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()

	out, err := h.Converter.WeiToFiat(ctx, wei)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": out.String()})
}

func (h *MarketHandler) convertCryptoToWei(w http.ResponseWriter, r *http.Request) {
	amount, err := decimal.NewFromString(r.URL.Query().Get("ethAmount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ethAmount"})
		return
	}
	// wei carries 18 fractional digits; anything finer has no representation
	if !amount.Equal(amount.Truncate(18)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ethAmount has more than 18 decimal places"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": pricing.CoinsToWei(amount).String()})
}

func (h *MarketHandler) convertWeiToCrypto(w http.ResponseWriter, r *http.Request) {
	wei, ok := new(big.Int).SetString(r.URL.Query().Get("weiAmount"), 10)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid weiAmount"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": pricing.WeiToCoins(wei).String()})
}
