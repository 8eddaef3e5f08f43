package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/facturacion-erp/internal/application/dto"
	"github.com/tu-usuario/facturacion-erp/internal/domain"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(limit, offset int) ([]*entity.User, error) { return nil, nil }

func (r *fakeUserRepo) Update(u *entity.User) error {
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateRole(id, role string) error { return nil }
func (r *fakeUserRepo) Delete(id string) error           { return nil }

func testUseCase() (*AuthUseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthUseCase(repo, JWTConfig{Secret: "secreto-de-test", ExpMinutes: 60, Issuer: "test"}), repo
}

func TestRegisterYLogin(t *testing.T) {
	uc, _ := testUseCase()

	user, err := uc.Register(dto.RegisterRequest{
		Name: "Ana", Email: "ana@erp.test", Password: "clave123",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, user.Role, "rol por defecto")

	resp, err := uc.Login(dto.LoginRequest{Email: "ana@erp.test", Password: "clave123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _ := testUseCase()

	_, err := uc.Register(dto.RegisterRequest{Email: "ana@erp.test", Password: "clave123"})
	require.NoError(t, err)
	_, err = uc.Register(dto.RegisterRequest{Email: "ana@erp.test", Password: "otra"})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))
}

func TestRegister_RolInvalido(t *testing.T) {
	uc, _ := testUseCase()
	_, err := uc.Register(dto.RegisterRequest{Email: "x@erp.test", Password: "clave", Role: "superadmin"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := testUseCase()
	_, err := uc.Register(dto.RegisterRequest{Email: "ana@erp.test", Password: "clave123"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@erp.test", Password: "mala"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@erp.test", Password: "clave123"})
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, repo := testUseCase()
	_, err := uc.Register(dto.RegisterRequest{Email: "ana@erp.test", Password: "clave123"})
	require.NoError(t, err)
	repo.byEmail["ana@erp.test"].Status = "inactive"

	_, err = uc.Login(dto.LoginRequest{Email: "ana@erp.test", Password: "clave123"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
