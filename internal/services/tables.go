package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"

	"github.com/laranacanta/backend/internal/db"
)

// wordlist is the BIP39 English wordlist (2048 words), used for join codes.
// Two words plus a number give 2048 × 2048 × 100 = 419 million combinations.
var wordlist = wordlists.English

// tableStore is the subset of the query contract the registry needs.
type tableStore interface {
	GetTableByJoinCode(ctx context.Context, joinCode string) (db.Table, error)
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
}

// TableService resolves join codes to tables and registers table-scoped
// identities.
type TableService struct {
	store tableStore
}

// NewTableService creates a TableService backed by the given store.
func NewTableService(store tableStore) *TableService {
	return &TableService{store: store}
}

// ResolveJoinCode looks up an active table by its public join code.
// Unknown codes and inactive tables both return db.ErrNotFound.
func (s *TableService) ResolveJoinCode(ctx context.Context, code string) (db.Table, error) {
	return s.store.GetTableByJoinCode(ctx, strings.TrimSpace(code))
}

// RegisterGuest creates a new guest identity scoped to the table. An empty
// nickname gets a generated placeholder. Nicknames are not unique.
func (s *TableService) RegisterGuest(ctx context.Context, tableID int64, nickname string) (db.User, error) {
	return s.register(ctx, tableID, nickname, RoleGuest)
}

// RegisterAdmin creates a staff identity scoped to the table. The caller is
// responsible for having verified the staff password first.
func (s *TableService) RegisterAdmin(ctx context.Context, tableID int64, nickname string) (db.User, error) {
	return s.register(ctx, tableID, nickname, RoleAdmin)
}

func (s *TableService) register(ctx context.Context, tableID int64, nickname string, role Role) (db.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = fmt.Sprintf("Guest_%d", rand.Intn(1000))
	}
	return s.store.CreateUser(ctx, db.CreateUserParams{
		Nickname: nickname,
		Role:     string(role),
		TableID:  tableID,
	})
}

// GenerateJoinCode creates a human-readable join code like "apple-river-42".
// Uniqueness is enforced by the tables.join_code constraint; provisioning
// retries on collision.
func GenerateJoinCode() string {
	word1 := wordlist[rand.Intn(len(wordlist))]
	word2 := wordlist[rand.Intn(len(wordlist))]
	num := rand.Intn(100)
	return fmt.Sprintf("%s-%s-%d", word1, word2, num)
}
