package sqlstore

import "github.com/goliatone/go-connections/core"

var (
	_ core.ConnectionStore        = (*ConnectionStore)(nil)
	_ core.CredentialStore        = (*CredentialStore)(nil)
	_ core.BindingStore           = (*BindingStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
