// Package action defines the pluggable Action → Frame and Frame →
// DomainEvent mapping (spec.md C8), the opcode and response-code
// catalogues of spec.md §6, and the pluggable structured-data codec
// spec.md §1 calls for. Every function here is pure and stateless.
package action

// Opcode is the 8-bit command opcode drawn from the fixed catalogue.
type Opcode uint8

// Opcode catalogue, pinned per spec.md §6 and §9 Open Question 2 — this
// table is authoritative over any other enumeration in the corpus this
// was distilled from.
const (
	OpResponse                  Opcode = 0
	OpRegister                  Opcode = 1
	OpLogin                     Opcode = 2
	OpRedeem                    Opcode = 3
	OpHardwareConnected         Opcode = 4
	OpPing                      Opcode = 6
	OpActivateDashboard         Opcode = 7
	OpDeactivateDashboard       Opcode = 8
	OpRefreshToken              Opcode = 9
	OpHardwareSync              Opcode = 16
	OpBlynkInternal             Opcode = 17
	OpSetWidgetProperty         Opcode = 19
	OpHardware                  Opcode = 20
	OpCreateDash                Opcode = 21
	OpUpdateDash                Opcode = 22
	OpDeleteDash                Opcode = 23
	OpLoadProfileGzipped        Opcode = 24
	OpAppSync                   Opcode = 25
	OpSharing                   Opcode = 26
	OpAddPushToken              Opcode = 27
	OpExportGraphData           Opcode = 28
	OpGetShareToken             Opcode = 30
	OpRefreshShareToken         Opcode = 31
	OpShareLogin                Opcode = 32
	OpCreateWidget              Opcode = 33
	OpUpdateWidget              Opcode = 34
	OpDeleteWidget              Opcode = 35
	OpGetEnergy                 Opcode = 36
	OpAddEnergy                 Opcode = 37
	OpUpdateProjectSettings     Opcode = 38
	OpAssignToken               Opcode = 39
	OpGetServer                 Opcode = 40
	OpCreateDevice              Opcode = 42
	OpUpdateDevice              Opcode = 43
	OpDeleteDevice              Opcode = 44
	OpGetDevices                Opcode = 45
	OpCreateTag                 Opcode = 46
	OpUpdateTag                 Opcode = 47
	OpDeleteTag                 Opcode = 48
	OpGetTags                   Opcode = 49
	OpMobileGetDevice           Opcode = 50
	OpCreateApp                 Opcode = 55
	OpUpdateApp                 Opcode = 56
	OpDeleteApp                 Opcode = 57
	OpEmailQR                   Opcode = 59
	OpGetEnhancedGraphData      Opcode = 60
	OpDeleteEnhancedGraphData   Opcode = 61
	OpGetCloneCode              Opcode = 62
	OpGetProjectByCloneCode     Opcode = 63
	OpHardwareResendFromBT      Opcode = 65
	OpLogout                    Opcode = 66
	OpCreateTileTemplate        Opcode = 67
	OpUpdateTileTemplate        Opcode = 68
	OpDeleteTileTemplate        Opcode = 69
	OpGetWidget                 Opcode = 70
	OpDeviceOffline              Opcode = 71
	OpOutdatedAppNotification   Opcode = 72
	OpGetProvisionToken         Opcode = 74
	OpDeleteDeviceData          Opcode = 76
	OpCreateReport              Opcode = 77
	OpUpdateReport              Opcode = 78
	OpDeleteReport              Opcode = 79
	OpExportReport              Opcode = 80
	OpResetPassword             Opcode = 81

	// OpConnectionState is a synthetic opcode: it never appears on the
	// wire and is deliberately absent from knownOpcodes. It exists only
	// so ConnectionStateEvent, which the session controller generates
	// itself rather than decodes, can satisfy DomainEvent.
	OpConnectionState Opcode = 255
)

// knownOpcodes backs the decoder's drop-unknown-opcode policy (spec.md
// step 5). Built once so IsKnown is a cheap map lookup, not a switch
// statement duplicating the const block above.
var knownOpcodes = map[Opcode]bool{
	OpResponse: true, OpRegister: true, OpLogin: true, OpRedeem: true,
	OpHardwareConnected: true, OpPing: true, OpActivateDashboard: true,
	OpDeactivateDashboard: true, OpRefreshToken: true, OpHardwareSync: true,
	OpBlynkInternal: true, OpSetWidgetProperty: true, OpHardware: true,
	OpCreateDash: true, OpUpdateDash: true, OpDeleteDash: true,
	OpLoadProfileGzipped: true, OpAppSync: true, OpSharing: true,
	OpAddPushToken: true, OpExportGraphData: true, OpGetShareToken: true,
	OpRefreshShareToken: true, OpShareLogin: true, OpCreateWidget: true,
	OpUpdateWidget: true, OpDeleteWidget: true, OpGetEnergy: true,
	OpAddEnergy: true, OpUpdateProjectSettings: true, OpAssignToken: true,
	OpGetServer: true, OpCreateDevice: true, OpUpdateDevice: true,
	OpDeleteDevice: true, OpGetDevices: true, OpCreateTag: true,
	OpUpdateTag: true, OpDeleteTag: true, OpGetTags: true,
	OpMobileGetDevice: true, OpCreateApp: true, OpUpdateApp: true,
	OpDeleteApp: true, OpEmailQR: true, OpGetEnhancedGraphData: true,
	OpDeleteEnhancedGraphData: true, OpGetCloneCode: true,
	OpGetProjectByCloneCode: true, OpHardwareResendFromBT: true,
	OpLogout: true, OpCreateTileTemplate: true, OpUpdateTileTemplate: true,
	OpDeleteTileTemplate: true, OpGetWidget: true, OpDeviceOffline: true,
	OpOutdatedAppNotification: true, OpGetProvisionToken: true,
	OpDeleteDeviceData: true, OpCreateReport: true, OpUpdateReport: true,
	OpDeleteReport: true, OpExportReport: true, OpResetPassword: true,
}

// IsKnown reports whether cmd belongs to the fixed opcode catalogue.
// Passed to frame.NewDecoder as the KnownOpcode predicate.
func IsKnown(cmd uint8) bool {
	return knownOpcodes[Opcode(cmd)]
}

// ResponseCode is the 32-bit status carried by RESPONSE frames.
type ResponseCode uint32

// Response code catalogue, per spec.md §6.
const (
	CodeOK                          ResponseCode = 200
	CodeQuotaLimit                  ResponseCode = 1
	CodeIllegalCommand              ResponseCode = 2
	CodeUserNotRegistered           ResponseCode = 3
	CodeUserAlreadyRegistered       ResponseCode = 4
	CodeUserNotAuthenticated        ResponseCode = 5
	CodeNotAllowed                  ResponseCode = 6
	CodeDeviceNotInNetwork          ResponseCode = 7
	CodeNoActiveDashboard           ResponseCode = 8
	CodeInvalidToken                ResponseCode = 9
	CodeIllegalCommandBody          ResponseCode = 11
	CodeNoData                      ResponseCode = 17
	CodeServerError                 ResponseCode = 19
	CodeEnergyLimit                 ResponseCode = 21
	CodeFacebookUserLoginWithPass   ResponseCode = 22
)

// codeNames backs ResponseCode.String(); any code not in this table is
// "Unknown" per spec.md §6.
var codeNames = map[ResponseCode]string{
	CodeOK:                        "OK",
	CodeQuotaLimit:                "QuotaLimit",
	CodeIllegalCommand:            "IllegalCommand",
	CodeUserNotRegistered:         "UserNotRegistered",
	CodeUserAlreadyRegistered:     "UserAlreadyRegistered",
	CodeUserNotAuthenticated:      "UserNotAuthenticated",
	CodeNotAllowed:                "NotAllowed",
	CodeDeviceNotInNetwork:        "DeviceNotInNetwork",
	CodeNoActiveDashboard:         "NoActiveDashboard",
	CodeInvalidToken:              "InvalidToken",
	CodeIllegalCommandBody:        "IllegalCommandBody",
	CodeNoData:                    "NoData",
	CodeServerError:               "ServerError",
	CodeEnergyLimit:               "EnergyLimit",
	CodeFacebookUserLoginWithPass: "FacebookUserLoginWithPass",
}

// String renders a human-readable name for known codes, "Unknown" for
// anything else.
func (c ResponseCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}
