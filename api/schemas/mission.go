package schemas

import (
	"errors"
	"fmt"
)

// ErrUnknownMission is returned when a fleet event carries a mission label
// that is not in the label table.
var ErrUnknownMission = errors.New("unknown mission label")

// MissionType classifies a row of the fleet event table.
type MissionType string

const (
	// Own fleets, outbound.
	MissionExpedition            MissionType = "EXPEDITION"
	MissionColonization          MissionType = "COLONIZATION"
	MissionHarvesting            MissionType = "HARVESTING"
	MissionTransport             MissionType = "TRANSPORT"
	MissionDeployment            MissionType = "DEPLOYMENT"
	MissionEspionage             MissionType = "ESPIONAGE"
	MissionACSDefend             MissionType = "ACS_DEFEND"
	MissionAttacking             MissionType = "ATTACKING"
	MissionACSAttack             MissionType = "ACS_ATTACK"
	MissionDestroy               MissionType = "DESTROY"
	MissionSearchingForLifeforms MissionType = "SEARCHING_FOR_LIFEFORMS"

	// Own fleets, returning.
	MissionExpeditionReturn            MissionType = "EXPEDITION_RETURN"
	MissionColonizationReturn          MissionType = "COLONIZATION_RETURN"
	MissionHarvestingReturn            MissionType = "HARVESTING_RETURN"
	MissionTransportReturn             MissionType = "TRANSPORT_RETURN"
	MissionDeploymentReturn            MissionType = "DEPLOYMENT_RETURN"
	MissionEspionageReturn             MissionType = "ESPIONAGE_RETURN"
	MissionACSDefendReturn             MissionType = "ACS_DEFEND_RETURN"
	MissionAttackingReturn             MissionType = "ATTACKING_RETURN"
	MissionACSAttackReturn             MissionType = "ACS_ATTACK_RETURN"
	MissionDestroyReturn               MissionType = "DESTROY_RETURN"
	MissionSearchingForLifeformsReturn MissionType = "SEARCHING_FOR_LIFEFORMS_RETURN"

	// Allied fleets.
	MissionFriendlyTransport MissionType = "FRIENDLY_TRANSPORT"
	MissionFriendlyACSDefend MissionType = "FRIENDLY_ACS_DEFEND"

	// Hostile fleets.
	MissionEnemyEspionage MissionType = "ENEMY_ESPIONAGE"
	MissionEnemyAttacking MissionType = "ENEMY_ATTACKING"
)

// Mission labels as rendered in the title attribute of the event table icons
// on the zh_TW servers. They are matched byte for byte.
const (
	LabelExpedition                  = "己方艦隊 | 遠征探險"
	LabelExpeditionReturn            = "己方艦隊 | 遠征探險 (返)"
	LabelColonization                = "己方艦隊 | 殖民"
	LabelColonizationReturn          = "己方艦隊 | 殖民 (返)"
	LabelHarvesting                  = "己方艦隊 | 採集回收"
	LabelHarvestingReturn            = "己方艦隊 | 採集回收 (返)"
	LabelTransport                   = "己方艦隊 | 運輸"
	LabelTransportReturn             = "己方艦隊 | 運輸 (返)"
	LabelDeployment                  = "己方艦隊 | 部署"
	LabelDeploymentReturn            = "己方艦隊 | 部署 (返)"
	LabelEspionage                   = "己方艦隊 | 間諜偵察"
	LabelEspionageReturn             = "己方艦隊 | 間諜偵察 (返)"
	LabelACSDefend                   = "己方艦隊 | ACS聯合防禦"
	LabelACSDefendReturn             = "己方艦隊 | ACS聯合防禦 (返)"
	LabelAttacking                   = "己方艦隊 | 攻擊"
	LabelAttackingReturn             = "己方艦隊 | 攻擊 (返)"
	LabelACSAttack                   = "己方艦隊 | ACS聯合攻擊"
	LabelACSAttackReturn             = "己方艦隊 | ACS聯合攻擊 (返)"
	LabelDestroy                     = "己方艦隊 | 摧毀月球"
	LabelDestroyReturn               = "己方艦隊 | 摧毀月球 (返)"
	LabelSearchingForLifeforms       = "友方艦隊 | 搜索生命形式"
	LabelSearchingForLifeformsReturn = "友方艦隊 | 搜索生命形式 (返)"
	LabelFriendlyTransport           = "友方艦隊 | 運輸"
	LabelFriendlyACSDefend           = "友方艦隊 | ACS聯合防禦"
	LabelEnemyEspionage              = "敵方艦隊 | 間諜偵察"
	LabelEnemyAttacking              = "敵方艦隊 | 攻擊"
)

var missionLabels = map[string]MissionType{
	LabelExpedition:                  MissionExpedition,
	LabelColonization:                MissionColonization,
	LabelHarvesting:                  MissionHarvesting,
	LabelTransport:                   MissionTransport,
	LabelDeployment:                  MissionDeployment,
	LabelEspionage:                   MissionEspionage,
	LabelACSDefend:                   MissionACSDefend,
	LabelAttacking:                   MissionAttacking,
	LabelACSAttack:                   MissionACSAttack,
	LabelDestroy:                     MissionDestroy,
	LabelSearchingForLifeforms:       MissionSearchingForLifeforms,
	LabelExpeditionReturn:            MissionExpeditionReturn,
	LabelColonizationReturn:          MissionColonizationReturn,
	LabelHarvestingReturn:            MissionHarvestingReturn,
	LabelTransportReturn:             MissionTransportReturn,
	LabelDeploymentReturn:            MissionDeploymentReturn,
	LabelEspionageReturn:             MissionEspionageReturn,
	LabelACSDefendReturn:             MissionACSDefendReturn,
	LabelAttackingReturn:             MissionAttackingReturn,
	LabelACSAttackReturn:             MissionACSAttackReturn,
	LabelDestroyReturn:               MissionDestroyReturn,
	LabelSearchingForLifeformsReturn: MissionSearchingForLifeformsReturn,
	LabelFriendlyTransport:           MissionFriendlyTransport,
	LabelFriendlyACSDefend:           MissionFriendlyACSDefend,
	LabelEnemyEspionage:              MissionEnemyEspionage,
	LabelEnemyAttacking:              MissionEnemyAttacking,
}

// ParseMissionType maps a scraped label to its MissionType. There is no
// default: a label outside the table is an error wrapping ErrUnknownMission.
func ParseMissionType(label string) (MissionType, error) {
	mt, ok := missionLabels[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMission, label)
	}
	return mt, nil
}

// MissionLabels returns a copy of the label table.
func MissionLabels() map[string]MissionType {
	out := make(map[string]MissionType, len(missionLabels))
	for k, v := range missionLabels {
		out[k] = v
	}
	return out
}

// IsHostile reports whether the mission belongs to an enemy fleet.
func (m MissionType) IsHostile() bool {
	return m == MissionEnemyAttacking || m == MissionEnemyEspionage
}
