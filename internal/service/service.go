package service

import (
	"atlas/internal/database/mongodb/repository"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewHierarchyService,
	NewHealthService,
	wire.Bind(new(NodeRepository), new(*repository.GeoNodeRepository)),
)
