package rpc

// Fully-qualified procedure paths.
const (
	RegisterProcedure = "/roommates.v1.AuthService/Register"
	LoginProcedure    = "/roommates.v1.AuthService/Login"

	MeProcedure         = "/roommates.v1.UserService/Me"
	UpdateUserProcedure = "/roommates.v1.UserService/UpdateUser"
	DeleteUserProcedure = "/roommates.v1.UserService/DeleteUser"

	CreateHouseholdProcedure = "/roommates.v1.HouseholdService/CreateHousehold"
	UpdateHouseholdProcedure = "/roommates.v1.HouseholdService/UpdateHousehold"
	DeleteHouseholdProcedure = "/roommates.v1.HouseholdService/DeleteHousehold"
	HomepageProcedure        = "/roommates.v1.HouseholdService/Homepage"

	CreateTaskProcedure            = "/roommates.v1.TaskService/CreateTask"
	UpdateTaskProcedure            = "/roommates.v1.TaskService/UpdateTask"
	CompleteTaskProcedure          = "/roommates.v1.TaskService/CompleteTask"
	MarkTaskIncompleteProcedure    = "/roommates.v1.TaskService/MarkTaskIncomplete"
	DeleteTaskProcedure            = "/roommates.v1.TaskService/DeleteTask"
	AddRotationMembersProcedure    = "/roommates.v1.TaskService/AddRotationMembers"
	RemoveRotationMembersProcedure = "/roommates.v1.TaskService/RemoveRotationMembers"
	ListTasksProcedure             = "/roommates.v1.TaskService/ListTasks"
	ListCompletedTasksProcedure    = "/roommates.v1.TaskService/ListCompletedTasks"

	CreateBillProcedure         = "/roommates.v1.BillService/CreateBill"
	UpdateBillProcedure         = "/roommates.v1.BillService/UpdateBill"
	DeleteBillProcedure         = "/roommates.v1.BillService/DeleteBill"
	AddParticipantsProcedure    = "/roommates.v1.BillService/AddParticipants"
	RemoveParticipantsProcedure = "/roommates.v1.BillService/RemoveParticipants"
	ActivateBillProcedure       = "/roommates.v1.BillService/ActivateBill"
	DeactivateBillProcedure     = "/roommates.v1.BillService/DeactivateBill"
	PayCycleProcedure           = "/roommates.v1.BillService/PayCycle"
	ListBillsProcedure          = "/roommates.v1.BillService/ListBills"
	ListBillCyclesProcedure     = "/roommates.v1.BillService/ListBillCycles"
	ListPaidCyclesProcedure     = "/roommates.v1.BillService/ListPaidCycles"
	BalancesProcedure           = "/roommates.v1.BillService/Balances"
)
