package shared

import (
	"context"
	"net/http"
	"strconv"
)

type contextKey string

const shopContextKey contextKey = "shop_id"

// ShopHeader carries the shop scope, set by the fronting auth proxy.
const ShopHeader = "X-Shop-ID"

// ContextWithShop stores the shop id on the context.
func ContextWithShop(ctx context.Context, shopID int64) context.Context {
	return context.WithValue(ctx, shopContextKey, shopID)
}

// ShopFromContext returns the shop id, zero when absent.
func ShopFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(shopContextKey).(int64)
	return id
}

// ShopScope reads X-Shop-ID into the request context. Requests without a
// valid shop id are rejected before reaching module handlers.
func ShopScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(ShopHeader), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, ErrShopRequired.Error(), http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithShop(r.Context(), id)))
	})
}
