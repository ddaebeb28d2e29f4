package firestore

import (
	"strings"
	"time"

	domain "github.com/manira/api/internal/domain"
)

type orderItemDocument struct {
	ProductID string `firestore:"product_id"`
	Name      string `firestore:"name"`
	Quantity  int    `firestore:"quantity"`
	UnitPrice int64  `firestore:"unit_price"`
	Decision  string `firestore:"decision"`
}

type orderDocument struct {
	UserID              string              `firestore:"user_id"`
	Items               []orderItemDocument `firestore:"items"`
	OriginalAmount      int64               `firestore:"original_amount"`
	DiscountAmount      int64               `firestore:"discount_amount"`
	TotalAmount         int64               `firestore:"total_amount"`
	PromotionCode       string              `firestore:"promotion_code,omitempty"`
	Status              string              `firestore:"status"`
	PaymentStatus       string              `firestore:"payment_status"`
	ShippingAddress     string              `firestore:"shipping_address"`
	Phone               string              `firestore:"phone"`
	PaymentMethod       string              `firestore:"payment_method"`
	AdminNotes          string              `firestore:"admin_notes,omitempty"`
	Currency            string              `firestore:"currency"`
	GatewayIntentID     string              `firestore:"gateway_intent_id,omitempty"`
	GatewayIntentAmount int64               `firestore:"gateway_intent_amount,omitempty"`
	GatewayPaymentID    string              `firestore:"gateway_payment_id,omitempty"`
	CreatedAt           time.Time           `firestore:"created_at"`
	UpdatedAt           time.Time           `firestore:"updated_at"`
	PaidAt              *time.Time          `firestore:"paid_at,omitempty"`
}

func fromDomainOrder(order domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		decision := item.Decision
		if decision == "" {
			decision = domain.ItemDecisionUndecided
		}
		items = append(items, orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Decision:  string(decision),
		})
	}
	doc := orderDocument{
		UserID:              order.UserID,
		Items:               items,
		OriginalAmount:      order.OriginalAmount,
		DiscountAmount:      order.DiscountAmount,
		TotalAmount:         order.TotalAmount,
		PromotionCode:       strings.TrimSpace(order.PromotionCode),
		Status:              string(order.Status),
		PaymentStatus:       string(order.PaymentStatus),
		ShippingAddress:     strings.TrimSpace(order.ShippingAddress),
		Phone:               strings.TrimSpace(order.Phone),
		PaymentMethod:       strings.TrimSpace(order.PaymentMethod),
		AdminNotes:          order.AdminNotes,
		Currency:            strings.ToUpper(strings.TrimSpace(order.Currency)),
		GatewayIntentID:     order.GatewayIntentID,
		GatewayIntentAmount: order.GatewayIntentAmount,
		GatewayPaymentID:    order.GatewayPaymentID,
		CreatedAt:           order.CreatedAt.UTC(),
		UpdatedAt:           order.UpdatedAt.UTC(),
	}
	if order.PaidAt != nil {
		paid := order.PaidAt.UTC()
		doc.PaidAt = &paid
	}
	return doc
}

func toDomainOrder(id string, doc orderDocument) domain.Order {
	items := make([]domain.OrderLineItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderLineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Decision:  domain.ItemDecision(item.Decision),
		})
	}
	order := domain.Order{
		ID:                  id,
		UserID:              doc.UserID,
		Items:               items,
		OriginalAmount:      doc.OriginalAmount,
		DiscountAmount:      doc.DiscountAmount,
		TotalAmount:         doc.TotalAmount,
		PromotionCode:       doc.PromotionCode,
		Status:              domain.OrderStatus(doc.Status),
		PaymentStatus:       domain.PaymentStatus(doc.PaymentStatus),
		ShippingAddress:     doc.ShippingAddress,
		Phone:               doc.Phone,
		PaymentMethod:       doc.PaymentMethod,
		AdminNotes:          doc.AdminNotes,
		Currency:            doc.Currency,
		GatewayIntentID:     doc.GatewayIntentID,
		GatewayIntentAmount: doc.GatewayIntentAmount,
		GatewayPaymentID:    doc.GatewayPaymentID,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
	if doc.PaidAt != nil {
		paid := doc.PaidAt.UTC()
		order.PaidAt = &paid
	}
	return order
}

type productDocument struct {
	Name           string    `firestore:"name"`
	Description    string    `firestore:"description"`
	Price          int64     `firestore:"price"`
	Category       string    `firestore:"category"`
	Material       string    `firestore:"material,omitempty"`
	Size           string    `firestore:"size,omitempty"`
	Weight         string    `firestore:"weight,omitempty"`
	ImageURL       string    `firestore:"image_url,omitempty"`
	InventoryCount int       `firestore:"inventory_count"`
	Active         bool      `firestore:"active"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func fromDomainProduct(product domain.Product) productDocument {
	return productDocument{
		Name:           strings.TrimSpace(product.Name),
		Description:    product.Description,
		Price:          product.Price,
		Category:       strings.TrimSpace(product.Category),
		Material:       strings.TrimSpace(product.Material),
		Size:           strings.TrimSpace(product.Size),
		Weight:         strings.TrimSpace(product.Weight),
		ImageURL:       strings.TrimSpace(product.ImageURL),
		InventoryCount: product.InventoryCount,
		Active:         product.Active,
		CreatedAt:      product.CreatedAt.UTC(),
		UpdatedAt:      product.UpdatedAt.UTC(),
	}
}

func toDomainProduct(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:             id,
		Name:           doc.Name,
		Description:    doc.Description,
		Price:          doc.Price,
		Category:       doc.Category,
		Material:       doc.Material,
		Size:           doc.Size,
		Weight:         doc.Weight,
		ImageURL:       doc.ImageURL,
		InventoryCount: doc.InventoryCount,
		Active:         doc.Active,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

type promotionDocument struct {
	Code            string    `firestore:"code"`
	Description     string    `firestore:"description,omitempty"`
	DiscountPercent int       `firestore:"discount_percent"`
	DiscountAmount  int64     `firestore:"discount_amount"`
	MinOrderAmount  int64     `firestore:"min_order_amount"`
	StartsAt        time.Time `firestore:"starts_at"`
	EndsAt          time.Time `firestore:"ends_at"`
	Active          bool      `firestore:"active"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func fromDomainPromotion(promotion domain.Promotion) promotionDocument {
	return promotionDocument{
		Code:            normalisePromotionCode(promotion.Code),
		Description:     promotion.Description,
		DiscountPercent: promotion.DiscountPercent,
		DiscountAmount:  promotion.DiscountAmount,
		MinOrderAmount:  promotion.MinOrderAmount,
		StartsAt:        promotion.StartsAt.UTC(),
		EndsAt:          promotion.EndsAt.UTC(),
		Active:          promotion.Active,
		CreatedAt:       promotion.CreatedAt.UTC(),
		UpdatedAt:       promotion.UpdatedAt.UTC(),
	}
}

func toDomainPromotion(id string, doc promotionDocument) domain.Promotion {
	return domain.Promotion{
		ID:              id,
		Code:            doc.Code,
		Description:     doc.Description,
		DiscountPercent: doc.DiscountPercent,
		DiscountAmount:  doc.DiscountAmount,
		MinOrderAmount:  doc.MinOrderAmount,
		StartsAt:        doc.StartsAt,
		EndsAt:          doc.EndsAt,
		Active:          doc.Active,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func normalisePromotionCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type cartItemDocument struct {
	UserID    string    `firestore:"user_id"`
	ProductID string    `firestore:"product_id"`
	Quantity  int       `firestore:"quantity"`
	AddedAt   time.Time `firestore:"added_at"`
}

func fromDomainCartItem(item domain.CartItem) cartItemDocument {
	return cartItemDocument{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt.UTC(),
	}
}

func toDomainCartItem(doc cartItemDocument) domain.CartItem {
	return domain.CartItem{
		UserID:    doc.UserID,
		ProductID: doc.ProductID,
		Quantity:  doc.Quantity,
		AddedAt:   doc.AddedAt,
	}
}

type userDocument struct {
	Email        string    `firestore:"email"`
	Phone        string    `firestore:"phone,omitempty"`
	FullName     string    `firestore:"full_name"`
	Address      string    `firestore:"address,omitempty"`
	Admin        bool      `firestore:"admin"`
	PasswordHash string    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func fromDomainUser(user domain.User) userDocument {
	return userDocument{
		Email:        normaliseEmail(user.Email),
		Phone:        strings.TrimSpace(user.Phone),
		FullName:     strings.TrimSpace(user.FullName),
		Address:      strings.TrimSpace(user.Address),
		Admin:        user.Admin,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func toDomainUser(id string, doc userDocument) domain.User {
	return domain.User{
		ID:           id,
		Email:        doc.Email,
		Phone:        doc.Phone,
		FullName:     doc.FullName,
		Address:      doc.Address,
		Admin:        doc.Admin,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type settingsDocument struct {
	StoreName       string    `firestore:"store_name"`
	ContactEmail    string    `firestore:"contact_email,omitempty"`
	ContactPhone    string    `firestore:"contact_phone,omitempty"`
	SupportAddress  string    `firestore:"support_address,omitempty"`
	AnnouncementBar string    `firestore:"announcement_bar,omitempty"`
	Categories      []string  `firestore:"categories,omitempty"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func fromDomainSettings(settings domain.StoreSettings) settingsDocument {
	categories := make([]string, 0, len(settings.Categories))
	for _, category := range settings.Categories {
		trimmed := strings.TrimSpace(category)
		if trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return settingsDocument{
		StoreName:       strings.TrimSpace(settings.StoreName),
		ContactEmail:    normaliseEmail(settings.ContactEmail),
		ContactPhone:    strings.TrimSpace(settings.ContactPhone),
		SupportAddress:  strings.TrimSpace(settings.SupportAddress),
		AnnouncementBar: strings.TrimSpace(settings.AnnouncementBar),
		Categories:      categories,
		UpdatedAt:       settings.UpdatedAt.UTC(),
	}
}

func toDomainSettings(doc settingsDocument) domain.StoreSettings {
	return domain.StoreSettings{
		StoreName:       doc.StoreName,
		ContactEmail:    doc.ContactEmail,
		ContactPhone:    doc.ContactPhone,
		SupportAddress:  doc.SupportAddress,
		AnnouncementBar: doc.AnnouncementBar,
		Categories:      doc.Categories,
		UpdatedAt:       doc.UpdatedAt,
	}
}
