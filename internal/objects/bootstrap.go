package objects

import (
	"github.com/meta-secret/meta-secret/internal/model"
	"github.com/meta-secret/meta-secret/internal/store"
)

// InitQueue bootstraps a queue-shaped object (VaultLog, DeviceLog,
// SsDeviceLog, SsLog): its first two events must be Unit{value:
// unitValue} and Genesis{value: genesisValue}. Initialization is
// idempotent — if the unit id already exists, InitQueue returns without
// writing anything.
func InitQueue(repo store.Repository, d model.ObjectDescriptor, unitValue, genesisValue any) error {
	unitId := model.UnitId(d)
	if _, ok, err := repo.GetKey(unitId); err != nil {
		return err
	} else if ok {
		return nil
	}

	unit := model.KvLogEvent{
		Key:   model.KvKey{ObjId: unitId, ObjDesc: d},
		Stage: model.StageUnit,
		Value: unitValue,
	}
	if _, err := repo.Save(unit); err != nil {
		return err
	}

	genesis := model.KvLogEvent{
		Key:   model.KvKey{ObjId: unitId.Next(), ObjDesc: d},
		Stage: model.StageGenesis,
		Value: genesisValue,
	}
	_, err := repo.Save(genesis)
	return err
}

// SaveSingleton writes value as the sole event (seq=1) of a singleton
// object (DeviceCreds, UserCreds, SsDistribution, SsClaim,
// SsDistributionStatus): objects that are written once and never
// appended to again. It is idempotent — a second call is a no-op.
func SaveSingleton(repo store.Repository, d model.ObjectDescriptor, value any) error {
	unitId := model.UnitId(d)
	if _, ok, err := repo.GetKey(unitId); err != nil {
		return err
	} else if ok {
		return nil
	}

	event := model.KvLogEvent{
		Key:   model.KvKey{ObjId: unitId, ObjDesc: d},
		Stage: model.StageUnit,
		Value: value,
	}
	_, err := repo.Save(event)
	return err
}

// Append saves value as the next regular event for d, using FindFreeId
// to compute its artifact id. Returns Conflict if another writer won
// the race for that id — the caller should re-read the free id and
// retry.
func Append(repo store.Repository, d model.ObjectDescriptor, value any) (model.ArtifactId, error) {
	id, err := FindFreeId(repo, d)
	if err != nil {
		return model.ArtifactId{}, err
	}

	event := model.KvLogEvent{
		Key:   model.KvKey{ObjId: id, ObjDesc: d},
		Stage: model.StageRegular,
		Value: value,
	}
	return repo.Save(event)
}
