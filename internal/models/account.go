package models

import "time"

type Role string // Роль пользователя

const (
	AdminRole    Role = "admin"    // Администратор площадки
	SupplierRole Role = "supplier" // Поставщик
)

// Account представляет модель учётной записи.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CompanyName  string    `json:"companyName"`
	Categories   []string  `json:"categories"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Caller представляет вызывающего пользователя, разрешённого через провайдер идентичности.
type Caller struct {
	ID   string
	Role Role
}

// RegistrationRequest представляет структуру запроса на регистрацию поставщика.
type RegistrationRequest struct {
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"passwordConfirm"`
	CompanyName     string   `json:"companyName"`
	Categories      []string `json:"categories"`
	TermsAccepted   bool     `json:"termsAccepted"`
}
