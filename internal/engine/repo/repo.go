// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"

	"github.com/go-keel/keel/pkg/database"
	"gorm.io/gorm"
)

// Repositories bundles every repository behind its interface.
type Repositories struct {
	User           IUserRepository
	Team           ITeamRepository
	TeamMembership ITeamMembershipRepository
	TeamInvitation ITeamInvitationRepository
	Otp            IOtpRepository
}

// NewRepositories builds all repositories on one database handle.
func NewRepositories(db database.IDatabase) *Repositories {
	return newRepositories(db.Database())
}

func newRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:           NewUserRepo(db),
		Team:           NewTeamRepo(db),
		TeamMembership: NewTeamMembershipRepo(db),
		TeamInvitation: NewTeamInvitationRepo(db),
		Otp:            NewOtpRepo(db),
	}
}

// ITxManager runs a function against transaction-scoped repositories.
// Multi-step mutations (invitation accept, last-owner checks) must go
// through here so their reads and writes share one transaction.
type ITxManager interface {
	Transaction(ctx context.Context, fn func(r *Repositories) error) error
}

type GormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db database.IDatabase) ITxManager {
	return &GormTxManager{db: db.Database()}
}

func (m *GormTxManager) Transaction(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
