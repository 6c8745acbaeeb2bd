package initializers

import (
	"leave-tools-backend/config"
	"leave-tools-backend/fiberlog"
	"leave-tools-backend/lib/actiontoken"
	approvalhandler "leave-tools-backend/lib/approval"
	authhandler "leave-tools-backend/lib/auth"
	leavehandler "leave-tools-backend/lib/leave"
)

var LoggerConfig *fiberlog.Config

func InitAllServices() {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitSmtp()
	actiontoken.Instance = actiontoken.NewInstance(
		config.Conf.Auth.ActionTokenSecret, config.Conf.Auth.ActionTokenTTLHours)
	authhandler.NewHandler()
	leavehandler.NewHandler()
	approvalhandler.NewHandler()
}
