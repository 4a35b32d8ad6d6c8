package memory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	store *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.store = New()
	s.Init(s.store)
}

func (s *StorageSuite) TestReturnedAccountIsACopy() {
	p, err := s.store.CreatePlayer(s.Ctx, &model.Player{Name: "alice"})
	s.Require().NoError(err)
	acc, err := s.store.CreateAccount(s.Ctx, p.ID, s.Now)
	s.Require().NoError(err)

	acc.PlayerID = 42

	got, err := s.store.GetAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.Equal(p.ID, got.PlayerID)
}

func (s *StorageSuite) TestMutateOtherAccountDoesNotBlock() {
	p, err := s.store.CreatePlayer(s.Ctx, &model.Player{Name: "alice"})
	s.Require().NoError(err)
	a, _ := s.store.CreateAccount(s.Ctx, p.ID, s.Now)
	b, _ := s.store.CreateAccount(s.Ctx, p.ID, s.Now)

	// Hold a's slot lock while mutating b
	_, _, err = s.store.MutateAccount(s.Ctx, a.ID, func(acc *model.Account) (*model.Operation, error) {
		updated, _, err := s.store.MutateAccount(s.Ctx, b.ID, credit1)
		s.Require().NoError(err)
		s.Equal("1", updated.Amount.String())
		return credit1(acc)
	})
	s.Require().NoError(err)
}

func credit1(acc *model.Account) (*model.Operation, error) {
	one := decimal.NewFromInt(1)
	acc.Amount = acc.Amount.Add(one)
	return &model.Operation{Type: model.OperationCredit, Amount: one}, nil
}
