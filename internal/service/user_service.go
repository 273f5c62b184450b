package service

import (
	"errors"

	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/pkg"
	"Vibe_Tribe/internal/repository/mysql"
	"Vibe_Tribe/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo  *mysql.UserRepository
	rUser *redis.UserRepository
}

func NewUserService() *UserService {
	return &UserService{
		repo:  &mysql.UserRepository{DB: mysql.DB},
		rUser: &redis.UserRepository{},
	}
}

func (s *UserService) Register(username, password, email string) error {
	if username == "" || password == "" || email == "" {
		return errors.New("username, password and email required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username: username,
		Password: string(hash),
		Email:    email,
	}

	return s.repo.Create(user)
}

func (s *UserService) Login(username, password string) (*pkg.Pair, error) {
	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, errors.New("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, errors.New("invalid password")
	}
	// 单点登录：token 写入 redis
	token, err := pkg.GeneratePair(user.ID)
	if err != nil {
		return nil, err
	}
	if err = s.rUser.AddUserToken(user.ID, token.AccessToken); err != nil {
		return nil, err
	}
	return token, nil
}

// RefreshToken 换发 token 对。新 access 必须写回 redis，
// 否则单点登录校验会把它当成异地登录拒掉
func (s *UserService) RefreshToken(refreshToken string) (*pkg.Pair, error) {
	pair, userID, err := pkg.Refresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if err = s.rUser.AddUserToken(userID, pair.AccessToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(usrID uint64) error {
	return s.rUser.DeleteUserToken(usrID)
}

func (s *UserService) ChangePassword(usrID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(usrID)
	if err != nil {
		return errors.New("user not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return errors.New("invalid password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err = s.repo.UpdatePassword(user, string(hash)); err != nil {
		return err
	}
	// 改密后强制重新登录
	return s.rUser.DeleteUserToken(usrID)
}
