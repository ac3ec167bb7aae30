package testutil

import (
	"time"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/achacynthia/expensetrack-backend/internal/util"
	"github.com/google/uuid"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name, pictureURL *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = uuid.New()
	if user.Currency == "" {
		user.Currency = domain.DefaultCurrency
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// Update updates an existing user
func (m *MockUserRepository) Update(user *domain.User) (*domain.User, error) {
	if _, ok := m.ByID[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateProfile updates the user's name and currency by Auth0 ID
func (m *MockUserRepository) UpdateProfile(auth0ID string, name *string, currency *string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if name != nil {
		user.Name = name
	}
	if currency != nil {
		user.Currency = *currency
	}
	return user, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name, pictureURL)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:         uuid.New(),
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		Currency:   domain.DefaultCurrency,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32

	// TransactionCounts drives HasTransactions responses per category
	TransactionCounts map[int32]int64
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories:        make(map[int32]*domain.Category),
		NextID:            1,
		TransactionCounts: make(map[int32]int64),
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID scoped to the user
func (m *MockCategoryRepository) GetByID(userID uuid.UUID, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID || category.DeletedAt != nil {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetByName retrieves a category by exact name, top-level entries first
func (m *MockCategoryRepository) GetByName(userID uuid.UUID, name string) (*domain.Category, error) {
	var match *domain.Category
	for _, category := range m.Categories {
		if category.UserID != userID || category.DeletedAt != nil {
			continue
		}
		if category.Name != name {
			continue
		}
		if category.ParentID == nil {
			return category, nil
		}
		if match == nil {
			match = category
		}
	}
	if match != nil {
		return match, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAllByUser retrieves all live categories for a user
func (m *MockCategoryRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Category, error) {
	var result []*domain.Category
	for id := int32(1); id < m.NextID; id++ {
		category, ok := m.Categories[id]
		if ok && category.UserID == userID && category.DeletedAt == nil {
			result = append(result, category)
		}
	}
	return result, nil
}

// Update updates a category's name and parent
func (m *MockCategoryRepository) Update(userID uuid.UUID, id int32, name string, parentID *int32) (*domain.Category, error) {
	category, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.ParentID = parentID
	category.UpdatedAt = time.Now()
	return category, nil
}

// SoftDelete marks a category and its subcategories as deleted
func (m *MockCategoryRepository) SoftDelete(userID uuid.UUID, id int32) error {
	category, err := m.GetByID(userID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	category.DeletedAt = &now
	for _, child := range m.Categories {
		if child.UserID == userID && child.ParentID != nil && *child.ParentID == id && child.DeletedAt == nil {
			child.DeletedAt = &now
		}
	}
	return nil
}

// HasTransactions reports whether any live transactions reference the category
func (m *MockCategoryRepository) HasTransactions(userID uuid.UUID, id int32) (bool, int64, error) {
	if _, err := m.GetByID(userID, id); err != nil {
		return false, 0, err
	}
	count := m.TransactionCounts[id]
	return count > 0, count, nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) *domain.Category {
	if category.ID == 0 {
		category.ID = m.NextID
		m.NextID++
	} else if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
	return category
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32

	// SetReceiptErr, when set, is returned by SetReceipt to simulate
	// a persistence failure.
	SetReceiptErr error
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = m.NextID
	m.NextID++
	transaction.CreatedAt = time.Now()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID scoped to the user
func (m *MockTransactionRepository) GetByID(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID || transaction.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetByUser retrieves a filtered, paginated page of transactions
func (m *MockTransactionRepository) GetByUser(userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	var matched []*domain.Transaction
	for id := m.NextID - 1; id >= 1; id-- {
		t, ok := m.Transactions[id]
		if !ok || t.UserID != userID || t.DeletedAt != nil {
			continue
		}
		if filters.Type != nil && t.Type != *filters.Type {
			continue
		}
		if filters.CategoryID != nil && t.CategoryID != *filters.CategoryID {
			continue
		}
		if filters.StartDate != nil && t.Date.Before(util.TruncateToDay(*filters.StartDate)) {
			continue
		}
		if filters.EndDate != nil && t.Date.After(util.TruncateToDay(*filters.EndDate)) {
			continue
		}
		matched = append(matched, t)
	}

	totalItems := int64(len(matched))
	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))

	start := int((page - 1) * pageSize)
	end := start + int(pageSize)
	var data []*domain.Transaction
	if start < len(matched) {
		if end > len(matched) {
			end = len(matched)
		}
		data = matched[start:end]
	}

	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// ListByUser retrieves every live transaction the user owns
func (m *MockTransactionRepository) ListByUser(userID uuid.UUID) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for id := int32(1); id < m.NextID; id++ {
		t, ok := m.Transactions[id]
		if ok && t.UserID == userID && t.DeletedAt == nil {
			result = append(result, t)
		}
	}
	return result, nil
}

// ListByUserAndDateRange retrieves live transactions dated within [start, end]
func (m *MockTransactionRepository) ListByUserAndDateRange(userID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	all, err := m.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	var result []*domain.Transaction
	for _, t := range all {
		if util.InInterval(t.Date, util.TruncateToDay(start), util.TruncateToDay(end)) {
			result = append(result, t)
		}
	}
	return result, nil
}

// Update replaces a transaction's fields
func (m *MockTransactionRepository) Update(transaction *domain.Transaction) (*domain.Transaction, error) {
	existing, err := m.GetByID(transaction.UserID, transaction.ID)
	if err != nil {
		return nil, err
	}
	transaction.CreatedAt = existing.CreatedAt
	transaction.UpdatedAt = time.Now()
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// SoftDelete marks a transaction as deleted
func (m *MockTransactionRepository) SoftDelete(userID uuid.UUID, id int32) error {
	transaction, err := m.GetByID(userID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	transaction.DeletedAt = &now
	return nil
}

// SetReceipt stores receipt metadata on a transaction
func (m *MockTransactionRepository) SetReceipt(userID uuid.UUID, id int32, receipt *domain.ReceiptImage) (*domain.Transaction, error) {
	if m.SetReceiptErr != nil {
		return nil, m.SetReceiptErr
	}
	transaction, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	transaction.Receipt = receipt
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// ClearReceipt removes receipt metadata from a transaction
func (m *MockTransactionRepository) ClearReceipt(userID uuid.UUID, id int32) (*domain.Transaction, error) {
	transaction, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	transaction.Receipt = nil
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) *domain.Transaction {
	if transaction.ID == 0 {
		transaction.ID = m.NextID
		m.NextID++
	} else if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
	m.Transactions[transaction.ID] = transaction
	return transaction
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets     map[int32]*domain.Budget
	Allocations map[int32][]*domain.BudgetAllocation
	NextID      int32
	NextAllocID int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:     make(map[int32]*domain.Budget),
		Allocations: make(map[int32][]*domain.BudgetAllocation),
		NextID:      1,
		NextAllocID: 1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID scoped to the user
func (m *MockBudgetRepository) GetByID(userID uuid.UUID, id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetAllByUser retrieves all budgets for a user
func (m *MockBudgetRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Budget, error) {
	var result []*domain.Budget
	for id := int32(1); id < m.NextID; id++ {
		budget, ok := m.Budgets[id]
		if ok && budget.UserID == userID {
			result = append(result, budget)
		}
	}
	return result, nil
}

// Update replaces a budget's fields
func (m *MockBudgetRepository) Update(budget *domain.Budget) (*domain.Budget, error) {
	if _, ok := m.Budgets[budget.ID]; !ok {
		return nil, domain.ErrBudgetNotFound
	}
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// Delete removes a budget and its allocations
func (m *MockBudgetRepository) Delete(userID uuid.UUID, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Budgets, id)
	delete(m.Allocations, id)
	return nil
}

// ListAllocations retrieves a budget's allocations
func (m *MockBudgetRepository) ListAllocations(budgetID int32) ([]*domain.BudgetAllocation, error) {
	return m.Allocations[budgetID], nil
}

// ReplaceAllocations swaps the budget's allocation set
func (m *MockBudgetRepository) ReplaceAllocations(budgetID int32, allocations []*domain.BudgetAllocation) ([]*domain.BudgetAllocation, error) {
	replaced := make([]*domain.BudgetAllocation, len(allocations))
	for i, a := range allocations {
		copied := *a
		copied.ID = m.NextAllocID
		m.NextAllocID++
		copied.BudgetID = budgetID
		replaced[i] = &copied
	}
	m.Allocations[budgetID] = replaced
	return replaced, nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) *domain.Budget {
	if budget.ID == 0 {
		budget.ID = m.NextID
		m.NextID++
	} else if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
	return budget
}
