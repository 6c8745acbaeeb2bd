package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"leave-tools-backend/controllers"
	approvalhandler "leave-tools-backend/lib/approval"
	leavehandler "leave-tools-backend/lib/leave"
	"leave-tools-backend/middleware"
	"leave-tools-backend/models"
	apimodels "leave-tools-backend/models/api"
	leaveapimodels "leave-tools-backend/models/api/leave"
)

type leaveApiController struct {
	controllers.BaseAPIController
}

func InitLeaveApiRouters(app *fiber.App) {
	controller := leaveApiController{}
	app.Route("leave", func(router fiber.Router) {
		//решения без сессии: согласующий подтверждает себя паролем или токеном действия
		router.Post(":id/approve", controller.approve)
		router.Post(":id/reject", controller.reject)
		router.Post(":id/secure-approve", controller.secureApprove)
		//операции под JWT
		router.Use(middleware.AuthorizationRequired())
		router.Post("submit", controller.submit)
		router.Get("my-requests", controller.myRequests)
		router.Get(":id/approval-logs", controller.approvalLogs)
		router.Use(middleware.ManagerRoleRequired())
		router.Get("pending-approvals", controller.pendingApprovals)
		router.Post(":id/action-token", controller.generateActionToken)
	})
}

// @Summary Подача заявки на отпуск
// @Tags Заявки на отпуск
// @Description Подача заявки на отпуск
// @Param   Authorization		header		string							true	"Authorization token"
// @Param	body				body		leaveapimodels.LeaveRequestData	true	"request body"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.SubmitResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/submit [post]
func (c *leaveApiController) submit(ctx *fiber.Ctx) error {
	var payload leaveapimodels.LeaveRequestData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := leavehandler.Instance.Submit(middleware.GetUserID(ctx), payload)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("согласующий с такой почтой не найден"))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания заявки на отпуск")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список своих заявок
// @Tags Заявки на отпуск
// @Description Список своих заявок
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]leaveapimodels.LeaveRequestView}
// @Failure 401
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/my-requests [get]
func (c *leaveApiController) myRequests(ctx *fiber.Ctx) error {
	resp, err := leavehandler.Instance.MyRequests(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Заявки, ожидающие решения вызывающего
// @Tags Заявки на отпуск
// @Description Заявки, ожидающие решения вызывающего
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]leaveapimodels.LeaveRequestView}
// @Failure 401
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/pending-approvals [get]
func (c *leaveApiController) pendingApprovals(ctx *fiber.Ctx) error {
	resp, err := leavehandler.Instance.PendingApprovals(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Согласовать заявку по паролю
// @Tags Решения по заявкам
// @Description Согласовать заявку по паролю назначенного согласующего
// @Param	body				body		leaveapimodels.DecisionRequest	true	"request body"
// @Param   id          		path    	string  						true    "rec ID"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.DecisionResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/{id}/approve [post]
func (c *leaveApiController) approve(ctx *fiber.Ctx) error {
	return c.passwordDecision(ctx, models.DecisionApprove)
}

// @Summary Отклонить заявку по паролю
// @Tags Решения по заявкам
// @Description Отклонить заявку по паролю назначенного согласующего
// @Param	body				body		leaveapimodels.DecisionRequest	true	"request body"
// @Param   id          		path    	string  						true    "rec ID"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.DecisionResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/{id}/reject [post]
func (c *leaveApiController) reject(ctx *fiber.Ctx) error {
	return c.passwordDecision(ctx, models.DecisionReject)
}

func (c *leaveApiController) passwordDecision(ctx *fiber.Ctx, action models.DecisionAction) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload leaveapimodels.DecisionRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	resp, err := approvalhandler.Instance.PasswordDecision(id, action, payload, c.originMeta(ctx))
	if err != nil {
		return c.sendDecisionError(ctx, err)
	}
	if resp.AlreadyProcessed {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("решение по заявке уже принято"))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Решение по защищенному токену действия
// @Tags Решения по заявкам
// @Description Решение по токену действия из письма, вход в систему не требуется
// @Param	body				body		leaveapimodels.SecureDecisionRequest	true	"request body"
// @Param   id          		path    	string  								true    "rec ID"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.DecisionResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 401
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/{id}/secure-approve [post]
func (c *leaveApiController) secureApprove(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload leaveapimodels.SecureDecisionRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	resp, err := approvalhandler.Instance.SecureDecision(id, payload, c.originMeta(ctx))
	if err != nil {
		return c.sendDecisionError(ctx, err)
	}
	//повторный клик по ссылке - не ошибка, отдаем текущее конечное состояние
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Журнал решений по заявке
// @Tags Решения по заявкам
// @Description Журнал решений по заявке
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.ApprovalLogsResponse}
// @Failure 401
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/{id}/approval-logs [get]
func (c *leaveApiController) approvalLogs(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := leavehandler.Instance.ApprovalLogs(id, middleware.GetUserID(ctx))
	if err != nil {
		return c.sendDecisionError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Перевыпуск токена действия
// @Tags Решения по заявкам
// @Description Перевыпуск токена действия для вызывающего
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    	string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=leaveapimodels.ActionTokenResponse}
// @Failure 401
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/leave/{id}/action-token [post]
func (c *leaveApiController) generateActionToken(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := leavehandler.Instance.GenerateActionToken(id, middleware.GetUserID(ctx))
	if err != nil {
		return c.sendDecisionError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *leaveApiController) originMeta(ctx *fiber.Ctx) models.OriginMeta {
	return models.OriginMeta{
		IPAddress: ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	}
}

func (c *leaveApiController) sendDecisionError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("запись не найдена"))
	case errors.Is(err, models.ErrUnauthorized):
		return ctx.SendStatus(fiber.StatusUnauthorized)
	case errors.Is(err, models.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
	case errors.Is(err, models.ErrAlreadyActioned):
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("решение по заявке уже принято"))
	case errors.Is(err, models.ErrInvalidAction):
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(models.ErrInvalidAction.Error()))
	default:
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обработки решения по заявке")
	}
}
