// Package usecase contiene los casos de uso CRUD de catálogo: productos,
// clientes, proveedores y usuarios.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/application/inventory"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/internal/domain/repository"
)

// ProductUseCase CRUD de productos y servicios. Stock y costo no se editan
// aquí: cambian solo por movimientos de inventario y recepción de compras.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{repo: repo, txRunner: txRunner}
}

// Create crea un producto o servicio. El stock inicial de un producto físico
// entra como movimiento de ajuste, para que el historial arranque completo.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if in.Type != entity.ProductTypeProduct && in.Type != entity.ProductTypeService {
		return nil, fmt.Errorf("%w: type debe ser product o service", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precios negativos", domain.ErrInvalidInput)
	}
	if in.Type == entity.ProductTypeService && in.InitialStock != 0 {
		return nil, fmt.Errorf("%w: un servicio no lleva stock inicial", domain.ErrInvalidInput)
	}
	if in.InitialStock < 0 {
		return nil, fmt.Errorf("%w: stock inicial negativo", domain.ErrInvalidInput)
	}
	if in.SKU != "" {
		if existing, _ := uc.repo.GetBySKU(in.SKU); existing != nil {
			return nil, fmt.Errorf("%w: SKU %s ya registrado", domain.ErrDuplicate, in.SKU)
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Type:        in.Type,
		SKU:         in.SKU,
		Description: in.Description,
		Price:       in.Price,
		CostPrice:   in.CostPrice,
		Stock:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}

	if in.InitialStock > 0 {
		err := uc.txRunner.Run(ctx, func(movRepo repository.InventoryMovementRepository, productRepo repository.ProductRepository) error {
			_, err := inventory.Apply(movRepo, productRepo, inventory.ApplyInput{
				ProductID: product.ID,
				Type:      entity.MovementTypeAdjustment,
				Quantity:  in.InitialStock,
				Ref:       entity.ManualRef(),
				Notes:     "stock inicial",
				UserID:    userID,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		product.Stock = in.InitialStock
	}

	return toProductResponse(product), nil
}

// Get obtiene un producto por ID.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con filtros.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) ([]*dto.ProductResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	products, err := uc.repo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// Update actualiza el catálogo del producto. No toca stock ni costo.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		product.Name = *in.Name
	}
	if in.SKU != nil && *in.SKU != product.SKU {
		if *in.SKU != "" {
			if existing, _ := uc.repo.GetBySKU(*in.SKU); existing != nil && existing.ID != id {
				return nil, fmt.Errorf("%w: SKU %s ya registrado", domain.ErrDuplicate, *in.SKU)
			}
		}
		product.SKU = *in.SKU
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto del catálogo.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.repo.GetByID(id); err != nil {
		return err
	}
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Stock:       p.Stock,
	}
}
