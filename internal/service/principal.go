package service

import "github.com/groupbuy-next/internal/constants"

// Principal 当前操作人，由 JWT 中间件解析得到
type Principal struct {
	UserID   uint
	Role     string
	LeaderID uint
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.UserID != 0 && p.Role == constants.RoleAdmin
}

// IsLeader 是否已绑定团长档案的团长账号
func (p Principal) IsLeader() bool {
	return p.UserID != 0 && p.Role == constants.RoleLeader && p.LeaderID != 0
}

// CanActOnLeader 管理员或团长本人
func (p Principal) CanActOnLeader(leaderID uint) bool {
	if p.IsAdmin() {
		return true
	}
	return p.IsLeader() && leaderID != 0 && p.LeaderID == leaderID
}

// scopeLeaderID 查询时的团长范围，团长只能看到自己
func (p Principal) scopeLeaderID(requested uint) (uint, error) {
	switch {
	case p.IsAdmin():
		return requested, nil
	case p.IsLeader():
		return p.LeaderID, nil
	default:
		return 0, ErrForbidden
	}
}
