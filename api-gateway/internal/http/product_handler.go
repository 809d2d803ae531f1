package http

import (
	"net/http"
	"time"

	pb "github.com/fjod/storefront/product-service/pkg/productpb"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productClient pb.ProductServiceClient
	timeout       time.Duration
}

func NewProductHandler(productClient pb.ProductServiceClient, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productClient: productClient,
		timeout:       timeout,
	}
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Artisan     string          `json:"artisan"`
	Category    string          `json:"category"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponse(p *pb.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Images:      images,
		Artisan:     p.Artisan,
		Category:    p.Category,
	}
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	res, err := h.productClient.GetProducts(ctx, &pb.GetProductsRequest{})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	products := make([]ProductResponse, len(res.Products))
	for i, p := range res.Products {
		products[i] = toProductResponse(p)
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := callContext(r, h.timeout)
	defer cancel()

	res, err := h.productClient.GetProduct(ctx, &pb.GetProductRequest{Id: chi.URLParam(r, "product_id")})
	if err != nil {
		handleGRPCError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(res.Product))
}
