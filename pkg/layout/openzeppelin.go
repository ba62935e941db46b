package layout

// Field names of the OpenZeppelin upgradeable contracts (v4).
const (
	FieldInitialized = "_initialized"
	FieldRoles       = "_roles"
	FieldRoleMembers = "_roleMembers"
)

// Stock layouts of the OpenZeppelin upgradeable inheritance chain behind
// AccessControlEnumerableUpgradeable.
//
//	0        _initialized, _initializing
//	1..50    ContextUpgradeable.__gap
//	51..100  ERC165Upgradeable.__gap
//	101      _roles
//	102..150 AccessControlUpgradeable.__gap
//	151      _roleMembers
//	152..200 AccessControlEnumerableUpgradeable.__gap
var Initializable = NewBuilder("Initializable").Field(FieldInitialized).MustBuild()

var ContextUpgradeable = Extend("ContextUpgradeable", Initializable).Gap(DefaultGap).MustBuild()

var ERC165Upgradeable = Extend("ERC165Upgradeable", ContextUpgradeable).Gap(DefaultGap).MustBuild()

var AccessControlUpgradeable = Extend("AccessControlUpgradeable", ERC165Upgradeable).
	Field(FieldRoles).
	Gap(DefaultGap - 1).
	MustBuild()

var AccessControlEnumerableUpgradeable = Extend("AccessControlEnumerableUpgradeable", AccessControlUpgradeable).
	Field(FieldRoleMembers).
	Gap(DefaultGap - 1).
	MustBuild()
