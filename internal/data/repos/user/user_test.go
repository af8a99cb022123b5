package user

import (
	"context"
	"testing"

	"github.com/VAshish07243/Chai-Shots/internal/data/repos/testutil"
	types "github.com/VAshish07243/Chai-Shots/internal/domain/user"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLite(t)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, []*types.User{
		{Email: "userrepo@example.com", Password: "pw", Role: types.RoleEditor},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	gotByEmails, err := repo.GetByEmails(ctx, nil, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Role != types.RoleEditor {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(ctx, nil, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatalf("EmailExists: expected false")
	}

	again, err := repo.UpsertByEmail(ctx, nil, &types.User{Email: created[0].Email, Password: "other", Role: types.RoleAdmin})
	if err != nil {
		t.Fatalf("UpsertByEmail: %v", err)
	}
	if again == nil || again.ID != created[0].ID || again.Role != types.RoleEditor {
		t.Fatalf("UpsertByEmail should keep the existing row, got %+v", again)
	}

	all, err := repo.List(ctx, nil)
	if err != nil || len(all) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(all))
	}
}
