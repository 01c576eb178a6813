package schema

// Master column name constants for the fields the resolution engine reads
// and writes. Purely mechanical columns are referenced by literal name at
// the I/O edges.
const (
	ColCountry          = "Country"
	ColCity             = "City"
	ColRetailer         = "Retailer"
	ColStoreFormat      = "Store Format"
	ColStoreName        = "Store Name"
	ColShelfLocation    = "Shelf Location"
	ColShelfLevels      = "Shelf Levels"
	ColShelfLevel       = "Shelf Level"
	ColProductType      = "Product Type"
	ColBrandedPrivate   = "Branded/Private Label"
	ColBrand            = "Brand"
	ColSubBrand         = "Sub-brand"
	ColProductName      = "Product Name"
	ColFlavor           = "Flavor"
	ColFacings          = "Facings"
	ColPriceLocal       = "Price (Local Currency)"
	ColCurrency         = "Currency"
	ColPriceEUR         = "Price (EUR)"
	ColPackagingSize    = "Packaging Size (ml)"
	ColPricePerLiter    = "Price per Liter (EUR)"
	ColNeedState        = "Need State"
	ColExtractionMethod = "Juice Extraction Method"
	ColProcessingMethod = "Processing Method"
	ColHPPTreatment     = "HPP Treatment"
	ColPackagingType    = "Packaging Type"
	ColClaims           = "Claims"
	ColStockStatus      = "Stock Status"
	ColLinearMeters     = "Est. Linear Meters"
	ColConfidenceScore  = "Confidence Score"
	ColNotes            = "Notes"
)
