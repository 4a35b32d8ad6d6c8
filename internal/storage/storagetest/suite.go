// Package storagetest holds the behavioural suite every storage adapter must pass.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

// Suite exercises a storage.Storage implementation.
// Adapters embed it and set NewStorage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
	Now     time.Time
}

// Init prepares the suite for a test with the given store
func (s *Suite) Init(store storage.Storage) {
	s.Storage = store
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) createPlayer(name string) *model.Player {
	p, err := s.Storage.CreatePlayer(s.Ctx, &model.Player{Name: name, PasswordHash: "hash", CreatedAt: s.Now})
	s.Require().NoError(err)
	return p
}

func (s *Suite) createAccount(playerID model.PlayerID) *model.Account {
	acc, err := s.Storage.CreateAccount(s.Ctx, playerID, s.Now)
	s.Require().NoError(err)
	return acc
}

func credit(amount string) storage.MutateFunc {
	return func(acc *model.Account) (*model.Operation, error) {
		a := decimal.RequireFromString(amount)
		acc.Amount = acc.Amount.Add(a)
		return &model.Operation{Type: model.OperationCredit, Amount: a}, nil
	}
}

// Player tests

func (s *Suite) TestCreateAndGetPlayer() {
	p := s.createPlayer("alice")
	s.True(p.ID.Valid())

	got, err := s.Storage.GetPlayer(s.Ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("alice", got.Name)
	s.Equal("hash", got.PasswordHash)
}

func (s *Suite) TestCreatePlayerAssignsDistinctIDs() {
	a := s.createPlayer("alice")
	b := s.createPlayer("bob")
	s.NotEqual(a.ID, b.ID)
}

func (s *Suite) TestCreatePlayerDuplicateName() {
	s.createPlayer("alice")
	_, err := s.Storage.CreatePlayer(s.Ctx, &model.Player{Name: "alice", PasswordHash: "other"})
	s.ErrorIs(err, model.ErrDuplicatePlayer)
}

func (s *Suite) TestGetPlayerByName() {
	p := s.createPlayer("alice")
	got, err := s.Storage.GetPlayerByName(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, 999)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Storage.GetPlayerByName(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Account tests

func (s *Suite) TestCreateAccountStartsAtZero() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)

	s.True(acc.ID.Valid())
	s.Equal(p.ID, acc.PlayerID)
	s.True(acc.Amount.IsZero())

	got, err := s.Storage.GetAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.True(got.Amount.IsZero())
	s.Equal(p.ID, got.PlayerID)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.Ctx, 999)
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestListAccountsByPlayer() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")
	a1 := s.createAccount(alice.ID)
	s.createAccount(bob.ID)
	a2 := s.createAccount(alice.ID)

	accounts, err := s.Storage.ListAccountsByPlayer(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal(a1.ID, accounts[0].ID)
	s.Equal(a2.ID, accounts[1].ID)
}

func (s *Suite) TestMutateAccountPersistsBalanceAndOperation() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)

	updated, op, err := s.Storage.MutateAccount(s.Ctx, acc.ID, credit("100.00"))
	s.Require().NoError(err)
	s.Equal("100", updated.Amount.String())
	s.True(op.ID.Valid())
	s.Equal(acc.ID, op.AccountID)
	s.Equal(model.OperationCredit, op.Type)

	got, err := s.Storage.GetAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.True(got.Amount.Equal(decimal.NewFromInt(100)))

	ops, err := s.Storage.ListOperationsByAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.Require().Len(ops, 1)
	s.Equal(op.ID, ops[0].ID)
}

func (s *Suite) TestMutateAccountErrorLeavesStateUnchanged() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)
	_, _, err := s.Storage.MutateAccount(s.Ctx, acc.ID, credit("5"))
	s.Require().NoError(err)

	boom := errors.New("boom")
	_, _, err = s.Storage.MutateAccount(s.Ctx, acc.ID, func(a *model.Account) (*model.Operation, error) {
		a.Amount = decimal.NewFromInt(-1)
		return nil, boom
	})
	s.ErrorIs(err, boom)

	got, err := s.Storage.GetAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.True(got.Amount.Equal(decimal.NewFromInt(5)))

	ops, err := s.Storage.ListOperationsByAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.Len(ops, 1)
}

func (s *Suite) TestMutateAccountNotFound() {
	called := false
	_, _, err := s.Storage.MutateAccount(s.Ctx, 999, func(a *model.Account) (*model.Operation, error) {
		called = true
		return nil, nil
	})
	s.ErrorIs(err, model.ErrAccountNotFound)
	s.False(called)
}

func (s *Suite) TestMutateAccountSerializesConcurrentCalls() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Storage.MutateAccount(s.Ctx, acc.ID, credit("1"))
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.Storage.GetAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.True(got.Amount.Equal(decimal.NewFromInt(n)), "balance %s", got.Amount)

	ops, err := s.Storage.ListOperationsByAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.Len(ops, n)
}

// Operation log tests

func (s *Suite) TestOperationsAreAscending() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)
	other := s.createAccount(p.ID)

	for _, amount := range []string{"1", "2", "3"} {
		_, _, err := s.Storage.MutateAccount(s.Ctx, acc.ID, credit(amount))
		s.Require().NoError(err)
		_, _, err = s.Storage.MutateAccount(s.Ctx, other.ID, credit(amount))
		s.Require().NoError(err)
	}

	ops, err := s.Storage.ListOperationsByAccount(s.Ctx, acc.ID)
	s.Require().NoError(err)
	s.Require().Len(ops, 3)
	for i := 1; i < len(ops); i++ {
		s.Less(ops[i-1].ID, ops[i].ID)
		s.Equal(acc.ID, ops[i].AccountID)
	}
	s.True(ops[0].Amount.Equal(decimal.NewFromInt(1)))
	s.True(ops[2].Amount.Equal(decimal.NewFromInt(3)))
}

func (s *Suite) TestAppendAndGetOperation() {
	p := s.createPlayer("alice")
	acc := s.createAccount(p.ID)

	first, err := s.Storage.AppendOperation(s.Ctx, &model.Operation{
		AccountID: acc.ID,
		Type:      model.OperationDebit,
		Amount:    decimal.RequireFromString("2.50"),
		CreatedAt: s.Now,
	})
	s.Require().NoError(err)
	second, err := s.Storage.AppendOperation(s.Ctx, &model.Operation{
		AccountID: acc.ID,
		Type:      model.OperationCredit,
		Amount:    decimal.NewFromInt(1),
		CreatedAt: s.Now,
	})
	s.Require().NoError(err)
	s.Less(first.ID, second.ID)

	got, err := s.Storage.GetOperation(s.Ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(model.OperationDebit, got.Type)
	s.True(got.Amount.Equal(decimal.RequireFromString("2.5")))
}

func (s *Suite) TestGetOperationNotFound() {
	_, err := s.Storage.GetOperation(s.Ctx, 999)
	s.ErrorIs(err, model.ErrOperationNotFound)
}

func (s *Suite) TestListOperationsEmpty() {
	ops, err := s.Storage.ListOperationsByAccount(s.Ctx, 999)
	s.Require().NoError(err)
	s.Empty(ops)
}

// Action log tests

func (s *Suite) TestAppendAndListActions() {
	alice := s.createPlayer("alice")
	bob := s.createPlayer("bob")

	types := []model.ActionType{model.ActionCreateAccount, model.ActionCreditAccount, model.ActionDebitAccount}
	for _, t := range types {
		_, err := s.Storage.AppendAction(s.Ctx, &model.Action{
			PlayerID: alice.ID, Type: t, Status: model.ActionSuccess, CreatedAt: s.Now,
		})
		s.Require().NoError(err)
	}
	_, err := s.Storage.AppendAction(s.Ctx, &model.Action{
		PlayerID: bob.ID, Type: model.ActionActions, Status: model.ActionFail, CreatedAt: s.Now,
	})
	s.Require().NoError(err)

	actions, err := s.Storage.ListActionsByPlayer(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(actions, 3)
	for i, a := range actions {
		s.Equal(types[i], a.Type)
		s.Equal(alice.ID, a.PlayerID)
		if i > 0 {
			s.Less(actions[i-1].ID, a.ID)
		}
	}

	bobs, err := s.Storage.ListActionsByPlayer(s.Ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(bobs, 1)
	s.Equal(model.ActionFail, bobs[0].Status)
}
