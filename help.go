package main

import (
	"fmt"
)

func executeHelp() {

	fmt.Println("run            execute the stored program")
	fmt.Println("list           list the stored program")
	fmt.Println("new            erase the stored program and variables")
	fmt.Println("load <file>    load a program (.bas assumed)")
	fmt.Println("save [file]    save the stored program")
	fmt.Println("delete <n>     delete one program line")
	fmt.Println("stats          toggle post-run execution statistics")
	fmt.Println("trace exec     toggle per-statement execution trace")
	fmt.Println("trace vars     toggle variable assignment trace")
	fmt.Println("trace dump     toggle parsed statement dumps")
	fmt.Println("bye            exit the interpreter")
	fmt.Println()
	fmt.Println("A line starting with a number is stored in the program;")
	fmt.Println("entering the number alone deletes that line.  Anything")
	fmt.Println("else is executed immediately.")
}
