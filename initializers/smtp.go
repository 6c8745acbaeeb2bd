package initializers

import (
	"leave-tools-backend/config"
	emailsender "leave-tools-backend/lib/email-sender"
	"leave-tools-backend/lib/smtp"
)

func InitSmtp() {
	err := smtp.Connect(config.Conf.Smtp.User, config.Conf.Smtp.Password,
		config.Conf.Smtp.Host, config.Conf.Smtp.Port, *config.Conf.Smtp.TLSEnabled)
	if err != nil {
		panic(err.Error())
	}
	emailsender.Instance = emailsender.NewInstance(
		config.Conf.Smtp.Host, config.Conf.Smtp.Port,
		config.Conf.Smtp.User, config.Conf.Smtp.Password,
		config.Conf.Smtp.EmailFrom, config.Conf.Smtp.DomainForActionLink)
}
