package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateCredentialMessage]     = (*CreateCredentialCommand)(nil)
	_ gocmd.Commander[CreateConnectionMessage]     = (*CreateConnectionCommand)(nil)
	_ gocmd.Commander[ConnectWithTokenMessage]     = (*ConnectWithTokenCommand)(nil)
	_ gocmd.Commander[DisconnectConnectionMessage] = (*DisconnectConnectionCommand)(nil)
	_ gocmd.Commander[DeleteConnectionMessage]     = (*DeleteConnectionCommand)(nil)
)
