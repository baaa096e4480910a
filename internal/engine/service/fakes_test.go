package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-keel/keel/internal/engine/access"
	"github.com/go-keel/keel/internal/engine/model"
	"github.com/go-keel/keel/internal/engine/repo"
	"gorm.io/gorm"
)

// In-memory repository fakes. Every repo field in Repositories is an
// interface, so the services under test run against these without a
// database.

func testNow() time.Time {
	return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
}

func newTestRepos() *repo.Repositories {
	return &repo.Repositories{
		User:           &fakeUserRepo{},
		Team:           &fakeTeamRepo{},
		TeamMembership: &fakeMembershipRepo{},
		TeamInvitation: &fakeInvitationRepo{},
		Otp:            newFakeOtpRepo(),
	}
}

// fakeTxManager reuses the live repos; the services' transactional checks
// still run, they just do not get rollback semantics.
type fakeTxManager struct {
	repos *repo.Repositories
}

func (f *fakeTxManager) Transaction(_ context.Context, fn func(r *repo.Repositories) error) error {
	return fn(f.repos)
}

type fakeNotifier struct {
	invitations []string
	roleChanges []string
}

func (f *fakeNotifier) NotifyTeamInvitation(_ context.Context, invitationId string) error {
	f.invitations = append(f.invitations, invitationId)
	return nil
}

func (f *fakeNotifier) NotifyRoleChange(_ context.Context, membershipId, _, _ string) error {
	f.roleChanges = append(f.roleChanges, membershipId)
	return nil
}

// --- users ---

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) CreateUser(user *model.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) GetUserByUserId(userId string) (*model.User, error) {
	for _, u := range f.users {
		if u.UserId == userId {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- teams ---

type fakeTeamRepo struct {
	teams []*model.Team
}

func (f *fakeTeamRepo) CreateTeam(team *model.Team) error {
	f.teams = append(f.teams, team)
	return nil
}

func (f *fakeTeamRepo) GetTeamByTeamId(teamId string) (*model.Team, error) {
	for _, t := range f.teams {
		if t.TeamId == teamId {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepo) GetTeamBySlug(slug string) (*model.Team, error) {
	for _, t := range f.teams {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeamRepo) UpdateTeamByTeamId(teamId string, updates map[string]any) error {
	team, err := f.GetTeamByTeamId(teamId)
	if err != nil {
		return err
	}
	if v, ok := updates["name"]; ok {
		team.Name = v.(string)
	}
	if v, ok := updates["plan"]; ok {
		team.Plan = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		team.IsActive = v.(bool)
	}
	return nil
}

func (f *fakeTeamRepo) CheckSlugExists(slug string, excludeTeamId ...string) (bool, error) {
	for _, t := range f.teams {
		if t.Slug != slug {
			continue
		}
		if len(excludeTeamId) > 0 && excludeTeamId[0] == t.TeamId {
			continue
		}
		return true, nil
	}
	return false, nil
}

// --- memberships ---

type fakeMembershipRepo struct {
	members []*model.TeamMembership
}

func (f *fakeMembershipRepo) CreateMembership(m *model.TeamMembership) error {
	f.members = append(f.members, m)
	return nil
}

func (f *fakeMembershipRepo) GetMembership(teamId, userId string) (*model.TeamMembership, error) {
	for _, m := range f.members {
		if m.TeamId == teamId && m.UserId == userId {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMembershipRepo) GetMembershipById(teamId, membershipId string) (*model.TeamMembership, error) {
	for _, m := range f.members {
		if m.TeamId == teamId && m.MembershipId == membershipId {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMembershipRepo) GetMembershipByMembershipId(membershipId string) (*model.TeamMembership, error) {
	for _, m := range f.members {
		if m.MembershipId == membershipId {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMembershipRepo) ListMembers(teamId string) ([]model.TeamMembership, error) {
	var out []model.TeamMembership
	for _, m := range f.members {
		if m.TeamId == teamId {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (f *fakeMembershipRepo) CountOwnersForUpdate(teamId string) (int64, error) {
	var n int64
	for _, m := range f.members {
		if m.TeamId == teamId && m.Role == access.RoleOwner {
			n++
		}
	}
	return n, nil
}

func (f *fakeMembershipRepo) UpdateRole(membershipId string, role access.Role) error {
	m, err := f.GetMembershipByMembershipId(membershipId)
	if err != nil {
		return err
	}
	m.Role = role
	return nil
}

func (f *fakeMembershipRepo) DeleteMembership(membershipId string) error {
	for i, m := range f.members {
		if m.MembershipId == membershipId {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMembershipRepo) ListExpired(now time.Time) ([]model.TeamMembership, error) {
	var out []model.TeamMembership
	for _, m := range f.members {
		if m.AccessExpiresAt != nil && m.AccessExpiresAt.Before(now) {
			out = append(out, *m)
		}
	}
	return out, nil
}

// --- invitations ---

type fakeInvitationRepo struct {
	invitations []*model.TeamInvitation
}

func (f *fakeInvitationRepo) CreateInvitation(inv *model.TeamInvitation) error {
	f.invitations = append(f.invitations, inv)
	return nil
}

func (f *fakeInvitationRepo) GetByToken(token string) (*model.TeamInvitation, error) {
	for _, inv := range f.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvitationRepo) GetByTokenForUpdate(token string) (*model.TeamInvitation, error) {
	return f.GetByToken(token)
}

func (f *fakeInvitationRepo) GetByInvitationId(teamId, invitationId string) (*model.TeamInvitation, error) {
	for _, inv := range f.invitations {
		if inv.TeamId == teamId && inv.InvitationId == invitationId {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvitationRepo) GetInvitation(invitationId string) (*model.TeamInvitation, error) {
	for _, inv := range f.invitations {
		if inv.InvitationId == invitationId {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvitationRepo) HasPendingInvitation(teamId, email string, now time.Time) (bool, error) {
	for _, inv := range f.invitations {
		if inv.TeamId == teamId && inv.Email == email && inv.IsValid(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationRepo) ListPending(teamId string, now time.Time) ([]model.TeamInvitation, error) {
	var out []model.TeamInvitation
	for _, inv := range f.invitations {
		if inv.TeamId == teamId && inv.IsValid(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) UpdateStatus(invitationId, status string) error {
	inv, err := f.GetInvitation(invitationId)
	if err != nil {
		return err
	}
	inv.Status = status
	return nil
}

func (f *fakeInvitationRepo) BindAcceptance(invitationId, userId string) error {
	inv, err := f.GetInvitation(invitationId)
	if err != nil {
		return err
	}
	inv.Status = model.InvitationStatusAccepted
	inv.UserId = userId
	return nil
}

func (f *fakeInvitationRepo) ListExpiredPending(now time.Time) ([]model.TeamInvitation, error) {
	var out []model.TeamInvitation
	for _, inv := range f.invitations {
		if inv.Status == model.InvitationStatusPending &&
			inv.ExpiresAt != nil && inv.ExpiresAt.Before(now) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) DeleteInvitation(invitationId string) error {
	for i, inv := range f.invitations {
		if inv.InvitationId == invitationId {
			f.invitations = append(f.invitations[:i], f.invitations[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- otp ---

type fakeOtpRepo struct {
	profiles      map[string]*model.UserOTPProfile
	totpDevices   []*model.TOTPDevice
	staticDevices []*model.StaticDevice
	staticTokens  []*model.StaticToken
	nextTokenID   uint64
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{profiles: make(map[string]*model.UserOTPProfile)}
}

func (f *fakeOtpRepo) GetProfile(userId string) (*model.UserOTPProfile, error) {
	p, ok := f.profiles[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeOtpRepo) GetOrCreateProfile(userId string) (*model.UserOTPProfile, error) {
	if p, ok := f.profiles[userId]; ok {
		return p, nil
	}
	p := &model.UserOTPProfile{UserId: userId}
	f.profiles[userId] = p
	return p, nil
}

func (f *fakeOtpRepo) UpdateProfile(userId string, updates map[string]any) error {
	p, ok := f.profiles[userId]
	if !ok {
		return nil
	}
	if v, ok := updates["otp_enabled"]; ok {
		p.OtpEnabled = v.(bool)
	}
	if v, ok := updates["backup_codes_generated"]; ok {
		p.BackupCodesGenerated = v.(bool)
	}
	if v, ok := updates["enabled_at"]; ok {
		if t, ok := v.(time.Time); ok {
			p.EnabledAt = &t
		}
	}
	if v, ok := updates["disabled_at"]; ok {
		if t, ok := v.(time.Time); ok {
			p.DisabledAt = &t
		}
	}
	if v, ok := updates["last_used_at"]; ok {
		if t, ok := v.(time.Time); ok {
			p.LastUsedAt = &t
		}
	}
	return nil
}

func (f *fakeOtpRepo) CreateTOTPDevice(d *model.TOTPDevice) error {
	f.totpDevices = append(f.totpDevices, d)
	return nil
}

func (f *fakeOtpRepo) GetUnconfirmedTOTPDevice(userId string) (*model.TOTPDevice, error) {
	for _, d := range f.totpDevices {
		if d.UserId == userId && !d.Confirmed {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOtpRepo) ListConfirmedTOTPDevices(userId string) ([]model.TOTPDevice, error) {
	var out []model.TOTPDevice
	for _, d := range f.totpDevices {
		if d.UserId == userId && d.Confirmed {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeOtpRepo) ConfirmTOTPDevice(deviceId string) error {
	for _, d := range f.totpDevices {
		if d.DeviceId == deviceId {
			d.Confirmed = true
		}
	}
	return nil
}

func (f *fakeOtpRepo) TouchTOTPDevice(deviceId string, at time.Time) error {
	for _, d := range f.totpDevices {
		if d.DeviceId == deviceId {
			t := at
			d.LastUsedAt = &t
		}
	}
	return nil
}

func (f *fakeOtpRepo) DeleteUnconfirmedTOTPDevices(userId string) error {
	kept := f.totpDevices[:0]
	for _, d := range f.totpDevices {
		if !(d.UserId == userId && !d.Confirmed) {
			kept = append(kept, d)
		}
	}
	f.totpDevices = kept
	return nil
}

func (f *fakeOtpRepo) DeleteAllTOTPDevices(userId string) error {
	kept := f.totpDevices[:0]
	for _, d := range f.totpDevices {
		if d.UserId != userId {
			kept = append(kept, d)
		}
	}
	f.totpDevices = kept
	return nil
}

func (f *fakeOtpRepo) CreateStaticDevice(d *model.StaticDevice) error {
	f.staticDevices = append(f.staticDevices, d)
	return nil
}

func (f *fakeOtpRepo) GetConfirmedStaticDevice(userId string) (*model.StaticDevice, error) {
	for _, d := range f.staticDevices {
		if d.UserId == userId && d.Confirmed {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOtpRepo) DeleteAllStaticDevices(userId string) error {
	owned := make(map[string]bool)
	keptDevices := f.staticDevices[:0]
	for _, d := range f.staticDevices {
		if d.UserId == userId {
			owned[d.DeviceId] = true
		} else {
			keptDevices = append(keptDevices, d)
		}
	}
	f.staticDevices = keptDevices

	keptTokens := f.staticTokens[:0]
	for _, t := range f.staticTokens {
		if !owned[t.DeviceId] {
			keptTokens = append(keptTokens, t)
		}
	}
	f.staticTokens = keptTokens
	return nil
}

func (f *fakeOtpRepo) CreateStaticToken(t *model.StaticToken) error {
	f.nextTokenID++
	t.ID = f.nextTokenID
	f.staticTokens = append(f.staticTokens, t)
	return nil
}

func (f *fakeOtpRepo) FindStaticToken(deviceId, token string) (*model.StaticToken, error) {
	for _, t := range f.staticTokens {
		if t.DeviceId == deviceId && t.Token == token {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOtpRepo) DeleteStaticToken(id uint64) error {
	for i, t := range f.staticTokens {
		if t.ID == id {
			f.staticTokens = append(f.staticTokens[:i], f.staticTokens[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeOtpRepo) CountStaticTokens(deviceId string) (int64, error) {
	var n int64
	for _, t := range f.staticTokens {
		if t.DeviceId == deviceId {
			n++
		}
	}
	return n, nil
}

func (f *fakeOtpRepo) ListStaticTokens(deviceId string) ([]model.StaticToken, error) {
	var out []model.StaticToken
	for _, t := range f.staticTokens {
		if t.DeviceId == deviceId {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeOtpRepo) HasConfirmedDevice(userId string) (bool, error) {
	for _, d := range f.totpDevices {
		if d.UserId == userId && d.Confirmed {
			return true, nil
		}
	}
	for _, d := range f.staticDevices {
		if d.UserId == userId && d.Confirmed {
			return true, nil
		}
	}
	return false, nil
}
