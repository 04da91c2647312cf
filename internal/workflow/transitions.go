// Package workflow 实现求职申请的审批状态机及其副作用（员工自动建档、通知）。
package workflow

import "talento/internal/model"

// transitions 当前状态 → 允许的下一状态。APPROVED 与 REJECTED 为终态。
var transitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.StatusPending:          {model.StatusEmployerApproved, model.StatusRejected},
	model.StatusEmployerApproved: {model.StatusAdminApproved, model.StatusRejected},
	model.StatusAdminApproved:    {model.StatusApproved, model.StatusRejected},
	model.StatusApproved:         {},
	model.StatusRejected:         {},
}

// Allowed 返回 from 可迁移到的状态，未知状态返回空集。
func Allowed(from model.ApplicationStatus) []model.ApplicationStatus {
	next := transitions[from]
	out := make([]model.ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition 判断 from → to 是否合法。
func CanTransition(from, to model.ApplicationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func provisions(status model.ApplicationStatus) bool {
	return status == model.StatusAdminApproved || status == model.StatusApproved
}
