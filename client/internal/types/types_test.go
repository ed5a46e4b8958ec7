package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCreateUserRequest_OmitsEmptyNames(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(CreateUserRequest{Email: "test.user@hooli.com", Mobile: "+614xxxxxxxx"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	if strings.Contains(got, "firstName") || strings.Contains(got, "lastName") {
		t.Fatalf("optional names should be omitted: %s", got)
	}
	if strings.Contains(got, "undefined") || strings.Contains(got, "null") {
		t.Fatalf("unexpected placeholder in payload: %s", got)
	}
	want := `{"email":"test.user@hooli.com","mobile":"+614xxxxxxxx"}`
	if got != want {
		t.Fatalf("payload = %s, want %s", got, want)
	}
}

func TestCreateConnectionRequest_Shape(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(CreateConnectionRequest{
		LoginID:     "gavinBelson",
		Password:    "hooli2016",
		Institution: InstitutionRef{ID: "AU00000"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"loginId":"gavinBelson","password":"hooli2016","institution":{"id":"AU00000"}}`
	if string(b) != want {
		t.Fatalf("payload = %s, want %s", b, want)
	}
}

func TestUser_RawPassThrough(t *testing.T) {
	t.Parallel()
	in := `{"type":"user","id":"u1","email":"a@b.c","mobile":"+61","extra":{"nested":true}}`
	var u User
	if err := json.Unmarshal([]byte(in), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.ID != "u1" || u.Type != "user" || u.Email != "a@b.c" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if string(u.Raw()) != in {
		t.Fatalf("raw = %s", u.Raw())
	}
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("marshal should reproduce the remote payload, got %s", out)
	}
}

func TestUser_EditedFieldsSurviveMarshal(t *testing.T) {
	t.Parallel()
	in := `{"type":"user","id":"u1","email":"a@b.c","mobile":"+61","extra":1}`
	var u User
	if err := json.Unmarshal([]byte(in), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u.Email = "new@b.c"
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"email":"new@b.c"`) {
		t.Fatalf("edited email dropped on marshal: %s", out)
	}
	if string(u.Raw()) != in {
		t.Fatalf("raw must keep the remote payload, got %s", u.Raw())
	}
}

func TestUserList_EditedItemReencoded(t *testing.T) {
	t.Parallel()
	in := `{"type":"list","data":[{"type":"user","id":"u1","email":"a@b.c","mobile":"","extra":1},{"type":"user","id":"u2","email":"c@d.e","mobile":"","extra":2}]}`
	var l UserList
	if err := json.Unmarshal([]byte(in), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out, _ := json.Marshal(l); string(out) != in {
		t.Fatalf("unchanged list should marshal to the remote payload, got %s", out)
	}

	l.Data[1].Email = "z@d.e"
	out, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, `"email":"z@d.e"`) {
		t.Fatalf("edited item dropped: %s", got)
	}
	if !strings.Contains(got, `"extra":1`) {
		t.Fatalf("untouched item should keep its remote payload: %s", got)
	}
}

func TestAccountList_DecodesItemsWithRaw(t *testing.T) {
	t.Parallel()
	in := `{"type":"list","data":[` +
		`{"type":"account","id":"a1","accountNo":"000-001 00002","balance":"-1234.56","class":{"type":"transaction","product":"Gold"}},` +
		`{"type":"account","id":"a2","accountNo":"14317265","balance":"","availableFunds":"10.10"}` +
		`],"links":{"self":"/users/u1/accounts"}}`
	var l AccountList
	if err := json.Unmarshal([]byte(in), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if l.Type != "list" || len(l.Data) != 2 {
		t.Fatalf("unexpected list: %+v", l)
	}
	if got := l.AccountNumbers(); got[0] != "000-001 00002" || got[1] != "14317265" {
		t.Fatalf("account numbers = %v", got)
	}
	if !strings.Contains(string(l.Data[0].Raw()), `"product":"Gold"`) {
		t.Fatalf("item raw not retained: %s", l.Data[0].Raw())
	}
	if l.Links.Self != "/users/u1/accounts" {
		t.Fatalf("links = %+v", l.Links)
	}

	bal, err := l.Data[0].BalanceAmount()
	if err != nil || bal.String() != "-1234.56" {
		t.Fatalf("balance = %v err=%v", bal, err)
	}
	zero, err := l.Data[1].BalanceAmount()
	if err != nil || !zero.IsZero() {
		t.Fatalf("empty balance should be zero: %v err=%v", zero, err)
	}
	funds, err := l.Data[1].AvailableFundsAmount()
	if err != nil || funds.String() != "10.1" {
		t.Fatalf("available funds = %v err=%v", funds, err)
	}
}

func TestAccount_BadBalance(t *testing.T) {
	t.Parallel()
	a := Account{Balance: "not-a-number"}
	if _, err := a.BalanceAmount(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestJob_Status(t *testing.T) {
	t.Parallel()
	pending := Job{Steps: []JobStep{{Title: "verify-credentials", Status: JobStepSuccess}, {Title: "retrieve-accounts", Status: JobStepInProgress}}}
	if pending.Succeeded() {
		t.Fatal("job with in-progress step reported success")
	}
	if _, failed := pending.FailedStep(); failed {
		t.Fatal("no step failed")
	}

	done := Job{Steps: []JobStep{{Status: JobStepSuccess}, {Status: JobStepSuccess}}}
	if !done.Succeeded() {
		t.Fatal("expected success")
	}

	bad := Job{Steps: []JobStep{{Title: "verify-credentials", Status: JobStepFailed}}}
	step, failed := bad.FailedStep()
	if !failed || step.Title != "verify-credentials" {
		t.Fatalf("expected failed verify-credentials, got %+v", step)
	}

	if (&Job{}).Succeeded() {
		t.Fatal("job without steps is not complete")
	}
}

func TestAccessToken_Expiry(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := AccessToken{AccessToken: "x", TokenType: "Bearer", ExpiresIn: 3600, ObtainedAt: now}
	if tok.Expired(now.Add(59 * time.Minute)) {
		t.Fatal("token expired early")
	}
	if !tok.Expired(now.Add(time.Hour)) {
		t.Fatal("token should be expired after expires_in")
	}
	if (&AccessToken{ExpiresIn: 3600}).Expired(now) {
		t.Fatal("unknown issue time must not report expired")
	}
}
