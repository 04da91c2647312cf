package notifier

import (
	"fmt"

	"talento/internal/model"
)

// StatusNotice 返回通用状态接口在迁移到 status 后发给申请人的通知。
// EMPLOYER_APPROVED 不在此处处理，由调用方按配置决定。
func StatusNotice(status model.ApplicationStatus, jobTitle string) (model.Notification, bool) {
	switch status {
	case model.StatusAdminApproved:
		return model.Notification{
			Title:   "Админ зөвшөөрлөө",
			Message: fmt.Sprintf("Таны %s ажлын байрны өргөдөл админд зөвшөөрөгдлөө.", jobTitle),
			Type:    model.NotifySuccess,
		}, true
	case model.StatusApproved:
		return model.Notification{
			Title:   "Өргөдөл зөвшөөрөгдлөө!",
			Message: fmt.Sprintf("Таны %s ажлын байрны өргөдөл бүрэн зөвшөөрөгдлөө.", jobTitle),
			Type:    model.NotifySuccess,
		}, true
	case model.StatusRejected:
		return RejectedNotice(jobTitle), true
	}
	return model.Notification{}, false
}

// RejectedNotice 申请被拒绝。
func RejectedNotice(jobTitle string) model.Notification {
	return model.Notification{
		Title:   "Өргөдөл татгалзгагдлаа",
		Message: fmt.Sprintf("Уучлаарай, таны %s ажлын байрны өргөдөл татгалзгагдлаа.", jobTitle),
		Type:    model.NotifyError,
	}
}

// EmployerApprovedNotice 雇主初审通过，等待管理员审批。
func EmployerApprovedNotice(jobTitle string) model.Notification {
	return model.Notification{
		Title:   "Өргөдөл эхний шатны зөвшөөрөл авлаа!",
		Message: fmt.Sprintf("Таны %s ажлын байрны өргөдөл ажил олгогчоос зөвшөөрөгдлөө. Одоо админ зөвшөөрөл хүлээгдэж байна.", jobTitle),
		Type:    model.NotifyInfo,
	}
}

// AdminApprovedCVNotice 管理员快捷审批后发给申请人。
func AdminApprovedCVNotice(jobTitle, jobID string) model.Notification {
	return model.Notification{
		Title:   "Таны CV зөвшөөрөгдлөө",
		Message: fmt.Sprintf("%s ажлын байрны CV таны хүсэлтийн дагуу зөвшөөрөгдлөө.", jobTitle),
		Type:    model.NotifyCVApproved,
		Link:    "/jobs/" + jobID,
	}
}

// AdminApprovalRequestNotice 通知管理员有待审批的申请。
func AdminApprovalRequestNotice(applicationID, jobTitle, applicantName string) model.Notification {
	return model.Notification{
		Title:   "Шинэ CV зөвшөөрөх хүсэлт",
		Message: fmt.Sprintf("%s ажлын байрны %s нэртэй хүний CV-г ажил олгогч зөвшөөрлөө.", jobTitle, applicantName),
		Type:    model.NotifyAdminApprovalRequest,
		Link:    "/admin/applications/" + applicationID,
	}
}

// NewApplicationNotice 通知雇主收到新申请。
func NewApplicationNotice(jobID, jobTitle string) model.Notification {
	return model.Notification{
		Title:   "Шинэ өргөдөл ирлээ",
		Message: fmt.Sprintf("%s ажлын байрт шинэ өргөдөл ирлээ", jobTitle),
		Type:    model.NotifyApplication,
		Link:    "/employer/applications/" + jobID,
	}
}

// CVReviewNotice 雇主审核简历的结果。
func CVReviewNotice(approved bool) model.Notification {
	if approved {
		return model.Notification{Title: "Таны CV зөвшөөрөгдлөө", Message: "Таны CV зөвшөөрөгдлөө", Type: model.NotifyCVApproved, Link: "/profile"}
	}
	return model.Notification{Title: "Таны CV татгалзлаа", Message: "Таны CV татгалзлаа", Type: model.NotifyCVRejected, Link: "/profile"}
}

// QuestionnaireSentNotice 通知申请人填写问卷。
func QuestionnaireSentNotice(questionnaireID, title string) model.Notification {
	return model.Notification{
		Title:   "Шинэ асуулга ирлээ",
		Message: fmt.Sprintf("%s асуулгад хариулаарай", title),
		Type:    model.NotifyQuestionnaire,
		Link:    "/questionnaires/" + questionnaireID,
	}
}

// GovernmentFormNotice 通知公司账号有新的公务员表单。
func GovernmentFormNotice(questionnaireID, applicantName string) model.Notification {
	return model.Notification{
		Title:   "Төрийн албан хаагчийн анкет ирлээ",
		Message: fmt.Sprintf("%s төрийн албан хаагчийн анкет бөглөж илгээсэн байна", applicantName),
		Type:    model.NotifyQuestionnaireResponse,
		Link:    "/employer/questionnaires/" + questionnaireID + "/responses",
	}
}
