package pnl

import "sort"

// Section identifiers, fixed by the statement layout.
const (
	SectionRevenue  = "revenue"
	SectionExpenses = "expenses"
	SectionOther    = "other_items"
	SectionEBITDA   = "ebitda"
)

// Compose applies the fixed statement formulas to the aggregated rollups and
// manual adjustment amounts. A summand missing from either input contributes
// zero, never an error. The formulas are the contract:
//
//	netOperatingRevenue = operatingRevenues + rebate
//	totalRevenue  = netOperatingRevenue + rentalEquipmentRevenue + dsRevenue
//	              + subCompaniesRevenue + otherRevenue
//	              + provisionEndService + provisionImpairment
//	totalExpenses = operationCost + rentalEquipmentCost + dsCost
//	              + generalAdminExpenses + staffCost + businessTripCost
//	              + overtimeCost + tripAllowanceCost + foodAllowanceCost
//	              + hseTrainingCost + serviceAgreementCost + procurementCost
//	ebitda    = totalRevenue - totalExpenses + gainSellingProducts
//	          - financeCosts - depreciation
//	netProfit = ebitda
//	margin    = netProfit / totalRevenue * 100   (0 when totalRevenue == 0)
func Compose(rollups map[string]CategoryRollup, manual map[string]float64) Statement {
	roll := func(id string) float64 { return rollups[id].Amount }
	adj := func(id string) float64 { return manual[id] }

	netOperatingRevenue := roll(CategoryOperatingRevenue) + adj(ItemRebate)
	totalRevenue := netOperatingRevenue +
		roll(CategoryRentalEquipmentRevenue) +
		adj(ItemDSRevenue) +
		adj(ItemSubCompaniesRevenue) +
		adj(ItemOtherRevenue) +
		adj(ItemProvisionEndService) +
		adj(ItemProvisionImpairment)

	totalExpenses := roll(CategoryOperationCost) +
		roll(CategoryRentalEquipmentCost) +
		adj(ItemDSCost) +
		adj(ItemGeneralAdminExpenses) +
		roll(CategoryStaffCost) +
		roll(CategoryBusinessTripCost) +
		roll(CategoryOvertimeCost) +
		roll(CategoryTripAllowanceCost) +
		roll(CategoryFoodAllowanceCost) +
		roll(CategoryHSETrainingCost) +
		adj(ItemServiceAgreementCost) +
		roll(CategoryProcurementCost)

	gain := adj(ItemGainSellingProducts)
	financeCosts := adj(ItemFinanceCosts)
	depreciation := roll(CategoryDepreciation)

	ebitda := totalRevenue - totalExpenses + gain - financeCosts - depreciation
	netProfit := ebitda
	margin := 0.0
	if totalRevenue != 0 {
		margin = netProfit / totalRevenue * 100
	}

	revenueSection := StatementSection{
		ID:       SectionRevenue,
		Category: "Revenue",
		Items: []StatementItem{
			revenueItem(CategoryOperatingRevenue, "Operating revenues", roll(CategoryOperatingRevenue), "invoicing"),
			revenueItem(ItemRebate, "Rebate", adj(ItemRebate), "manual"),
			revenueItem(CategoryRentalEquipmentRevenue, "Rental equipment revenue", roll(CategoryRentalEquipmentRevenue), "assets"),
			revenueItem(ItemDSRevenue, "DS revenue", adj(ItemDSRevenue), "manual"),
			revenueItem(ItemSubCompaniesRevenue, "Sub-companies revenue", adj(ItemSubCompaniesRevenue), "manual"),
			revenueItem(ItemOtherRevenue, "Other revenue", adj(ItemOtherRevenue), "manual"),
			revenueItem(ItemProvisionEndService, "Provision: end of service", adj(ItemProvisionEndService), "manual"),
			revenueItem(ItemProvisionImpairment, "Provision: impairment", adj(ItemProvisionImpairment), "manual"),
		},
		Subtotal: totalRevenue,
	}

	expenseSection := StatementSection{
		ID:       SectionExpenses,
		Category: "Expenses",
		Items: []StatementItem{
			expenseItem(CategoryOperationCost, "Operation cost", roll(CategoryOperationCost), "operations"),
			expenseItem(CategoryRentalEquipmentCost, "Rental equipment cost", roll(CategoryRentalEquipmentCost), "assets"),
			expenseItem(ItemDSCost, "DS cost", adj(ItemDSCost), "manual"),
			expenseItem(ItemGeneralAdminExpenses, "General & admin expenses", adj(ItemGeneralAdminExpenses), "manual"),
			expenseItem(CategoryStaffCost, "Staff cost", roll(CategoryStaffCost), "payroll"),
			expenseItem(CategoryBusinessTripCost, "Business trip cost", roll(CategoryBusinessTripCost), "business_trips"),
			expenseItem(CategoryOvertimeCost, "Overtime cost", roll(CategoryOvertimeCost), "overtime"),
			expenseItem(CategoryTripAllowanceCost, "Trip allowance cost", roll(CategoryTripAllowanceCost), "allowances"),
			expenseItem(CategoryFoodAllowanceCost, "Food allowance cost", roll(CategoryFoodAllowanceCost), "allowances"),
			expenseItem(CategoryHSETrainingCost, "HSE training cost", roll(CategoryHSETrainingCost), "hse_training"),
			expenseItem(ItemServiceAgreementCost, "Service agreement cost", adj(ItemServiceAgreementCost), "manual"),
			expenseItem(CategoryProcurementCost, "Procurement cost", roll(CategoryProcurementCost), "procurement"),
		},
		Subtotal: totalExpenses,
	}

	otherSection := StatementSection{
		ID:       SectionOther,
		Category: "Other Income / Expense Items",
		Items: []StatementItem{
			revenueItem(ItemGainSellingProducts, "Gain on selling products", gain, "manual"),
			expenseItem(ItemFinanceCosts, "Finance costs", financeCosts, "manual"),
			expenseItem(CategoryDepreciation, "Depreciation", depreciation, "assets"),
		},
		Subtotal: gain - financeCosts - depreciation,
	}

	// The EBITDA subtotal is the formula result, not the sum of its display
	// rows: the rows show unsigned magnitudes for the UI while the subtotal
	// subtracts expenses, finance costs and depreciation. Downstream must not
	// reconcile the two.
	ebitdaSection := StatementSection{
		ID:       SectionEBITDA,
		Category: "EBITDA",
		Items: []StatementItem{
			revenueItem("total_revenue", "Total revenue", totalRevenue, "composed"),
			expenseItem("total_expenses", "Total expenses", totalExpenses, "composed"),
			revenueItem(ItemGainSellingProducts, "Gain on selling products", gain, "manual"),
			expenseItem(ItemFinanceCosts, "Finance costs", financeCosts, "manual"),
			expenseItem(CategoryDepreciation, "Depreciation", depreciation, "assets"),
		},
		Subtotal: ebitda,
	}

	statement := Statement{
		Sections: []StatementSection{revenueSection, expenseSection, otherSection, ebitdaSection},
		Totals: StatementTotals{
			NetOperatingRevenue: netOperatingRevenue,
			TotalRevenue:        totalRevenue,
			TotalExpenses:       totalExpenses,
			EBITDA:              ebitda,
			NetProfit:           netProfit,
			Margin:              margin,
		},
	}

	for id, rollup := range rollups {
		if rollup.Degraded {
			statement.DegradedCategories = append(statement.DegradedCategories, id)
		}
	}
	sort.Strings(statement.DegradedCategories)
	statement.Degraded = len(statement.DegradedCategories) > 0
	return statement
}

// ManualAmounts flattens active manual entries into the id->amount mapping
// the composer consumes.
func ManualAmounts(entries []ManualEntry) map[string]float64 {
	amounts := make(map[string]float64, len(entries))
	for _, entry := range entries {
		if entry.IsActive {
			amounts[entry.ItemID] = entry.Amount
		}
	}
	return amounts
}

// Trend hints are display-only sign conventions: a revenue-type line points
// up when it adds value, an expense-type line points down when it adds cost.
func revenueItem(id, description string, amount float64, source string) StatementItem {
	trend := TrendNeutral
	switch {
	case amount > 0:
		trend = TrendUp
	case amount < 0:
		trend = TrendDown
	}
	return StatementItem{ID: id, Description: description, Amount: amount, SourceModule: source, Trend: trend}
}

func expenseItem(id, description string, amount float64, source string) StatementItem {
	trend := TrendNeutral
	switch {
	case amount > 0:
		trend = TrendDown
	case amount < 0:
		trend = TrendUp
	}
	return StatementItem{ID: id, Description: description, Amount: amount, SourceModule: source, Trend: trend}
}
