package codec

// CurrentVersion is the version written by Encode.
const CurrentVersion = "1"

// FileExtension is the reserved extension of persisted macro files.
const FileExtension = ".wbmacro"

const (
	elemGroup       = "MacroGroup"
	elemMacro       = "Macro"
	elemDescription = "Description"
	elemCommand     = "MacroCommand"
	elemToolTip     = "ToolTip"
	elemParameter   = "Parameter"
	elemListItem    = "ListItem"
	elemPointer     = "MouseEventInfo"
)

const (
	attrName            = "Name"
	attrID              = "UniqueIdentifier"
	attrVersion         = "Version"
	attrShortcut        = "ShortCutKey"
	attrCommandType     = "CommandType"
	attrControlType     = "WidgetType"
	attrDescriptiveName = "DescriptiveName"
	attrDelay           = "DelaySeconds"
	attrOperation       = "CustomOperationTypeName"
	attrDataType        = "DataType"
	attrCustomType      = "CustomDataType"
	attrValue           = "Value"

	attrPointerKind  = "MouseEventType"
	attrButton       = "MouseButton"
	attrButtonMask   = "MouseButtonsMask"
	attrModifierMask = "KeyboardModifiersMask"
	attrWidth        = "WidgetWidth"
	attrHeight       = "WidgetHeight"
	attrLocalX       = "LocalX"
	attrLocalY       = "LocalY"
)

// Attributes of the older command scheme.
const (
	attrLegacyClass        = "ObjectClass"
	attrLegacyDataType     = "ObjectDataType"
	attrLegacyValue        = "ObjectValue"
	attrLegacyDataTypeTwo  = "ObjectDataTypeTwo"
	attrLegacyValueTwo     = "ObjectValueTwo"
	legacyPointerClassName = "MOUSE_USER_EVENT"
)

const (
	valueTrue  = "true"
	valueFalse = "false"
)
