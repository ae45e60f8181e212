package hook

// Hooks fired by the dispatch pipeline.
const (
	// AppBootstrap fires once boot has built the route table, before serving.
	AppBootstrap = "app.bootstrap"
	// AppStarted fires once the HTTP listener is accepting connections.
	AppStarted = "app.started"

	RequestBeforeHandle     = "request.before_handle"
	ControllerBeforeExecute = "controller.before_execute"
	ParameterValidateBefore = "parameter.validate_before"
	ParameterValidateAfter  = "parameter.validate_after"
	ParameterValidateError  = "parameter.validate_error"
	// ControllerResult is a filter over the handler's return value.
	ControllerResult       = "controller.result"
	ControllerAfterExecute = "controller.after_execute"
	RequestAfterHandle     = "request.after_handle"
	RequestError           = "request.error"
)
