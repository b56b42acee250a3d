package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Directory         = (*IntegrationDirectory)(nil)
	_ Authorizer        = OwnerGate{}
	_ CredentialCodec   = JSONFieldsCodec{}
	_ ConnectionService = (*Service)(nil)
	_ ProjectorRegistry = (*lifecycleProjectorRegistry)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
