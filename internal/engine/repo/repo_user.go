package repo

import (
	"github.com/go-keel/keel/internal/engine/model"
	"gorm.io/gorm"
)

/**
 * @author: keel.authors@gmail.com
 * @time: 2025/3/9 20:21
 * @file: repo_user.go
 * @description: user repository
 */

type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByUserId(userId string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
}

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) IUserRepository {
	return &UserRepo{db: db}
}

func (ur *UserRepo) CreateUser(user *model.User) error {
	return ur.db.Table(user.TableName()).Create(user).Error
}

func (ur *UserRepo) GetUserByUserId(userId string) (*model.User, error) {
	var user model.User
	if err := ur.db.Table(user.TableName()).
		Where("user_id = ?", userId).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *UserRepo) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ur.db.Table(user.TableName()).
		Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *UserRepo) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ur.db.Table(user.TableName()).
		Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
